package warhorn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultURL = "https://warhorn.net/graphql"

type Client struct {
	url   string
	token string
	http  *http.Client
	log   zerolog.Logger
	now   func() time.Time
}

func New(opts ...Option) *Client {
	c := &Client{
		url:  defaultURL,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type gqlRequest struct {
	Query string `json:"query"`
}

// doQuery: POST de la query, clasifica el status y devuelve el árbol
// decodificado. Sin reintentos: el próximo poll es el reintento.
func (c *Client) doQuery(ctx context.Context, query string) (Node, error) {
	body, err := json.Marshal(gqlRequest{Query: query})
	if err != nil {
		return Node{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Node{}, fmt.Errorf("warhorn request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Node{}, ctx.Err()
		}
		return Node{}, &ServerError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Node{}, &ServerError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Node{}, &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return Node{}, fmt.Errorf("warhorn decode: %w", err)
	}
	root := Wrap(out)

	if errs := root.Path("errors").List(); len(errs) > 0 {
		qe := &QueryError{}
		for _, e := range errs {
			qe.Messages = append(qe.Messages, e.Path("message").String())
		}
		return Node{}, qe
	}
	return root.Path("data"), nil
}
