package warhorn

import (
	"fmt"
	"strings"
)

// ServerError es una falla transitoria del upstream: respuesta 5xx o
// error de conexión (Status == 0). El loop la trata a nivel de pasada.
type ServerError struct {
	Status int
	Body   string
	Err    error
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("warhorn transport: %v", e.Err)
	}
	return fmt.Sprintf("warhorn server status %d: %s", e.Status, e.Body)
}

func (e *ServerError) Unwrap() error { return e.Err }

// APIError: status no-2xx que no es 5xx (auth, rate limit, query mal formada).
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("warhorn api status %d: %s", e.Status, e.Body)
}

// QueryError agrupa el arreglo "errors" de una respuesta GraphQL.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "warhorn graphql: " + strings.Join(e.Messages, "; ")
}

// ValidationError: nodo de sesión incompleto o con datos inválidos.
type ValidationError struct {
	Reason string
	Node   Node
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid game session (%s): %s", e.Reason, e.Node.Raw())
}
