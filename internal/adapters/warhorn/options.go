package warhorn

import (
	"net/http"

	"github.com/rs/zerolog"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithURL(u string) Option {
	return func(c *Client) { c.url = u }
}

// WithToken agrega "Authorization: Bearer <token>" a cada query.
func WithToken(t string) Option {
	return func(c *Client) { c.token = t }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}
