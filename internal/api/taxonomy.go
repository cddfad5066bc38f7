package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/debemdeboas/the-press/internal/model"
)

func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var out response[[]model.Tag]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tags", out: &out}); err != nil {
		return nil, err
	}
	return out.Response, nil
}

type tagBody struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (c *Client) CreateTag(ctx context.Context, name, slug string) (*model.Tag, error) {
	var out response[model.Tag]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/tags",
		body:   tagBody{Name: name, Slug: slug},
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out.Response, nil
}

func (c *Client) UpdateTag(ctx context.Context, t model.Tag) (*model.Tag, error) {
	var out response[model.Tag]
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/tags/" + url.PathEscape(t.ID),
		route:  "/tags/{id}",
		body:   tagBody{Name: t.Name, Slug: t.Slug},
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	if out.Response.ID == "" {
		return &t, nil
	}
	return &out.Response, nil
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/tags/" + url.PathEscape(id),
		route:  "/tags/{id}",
		auth:   true,
	})
}

func (c *Client) ListAuthors(ctx context.Context) ([]model.Author, error) {
	var out response[[]model.Author]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/authors", out: &out}); err != nil {
		return nil, err
	}
	return out.Response, nil
}

// CreateAuthor registers a new account through the sign-up endpoint.
func (c *Client) CreateAuthor(ctx context.Context, a model.NewAuthor) (*model.Author, error) {
	var out response[model.Author]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   a,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	if out.Response.Email == "" {
		out.Response.Name, out.Response.Email = a.Name, a.Email
		out.Response.Username, out.Response.Role = a.Username, a.Role
	}
	return &out.Response, nil
}

// Stats feeds the dashboard. The endpoint answers without an envelope.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/meta", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
