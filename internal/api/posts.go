package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/debemdeboas/the-press/internal/model"
)

var ErrMissingID = errors.New("post has no id")

func postPath(id model.PostID) string {
	return "/blogs/" + url.PathEscape(string(id))
}

// ListPosts returns one page of every post, drafts and deleted ones included.
func (c *Client) ListPosts(ctx context.Context, page int) (*model.PostPage, error) {
	if page < 1 {
		page = 1
	}
	var out response[model.PostPage]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/blogs/type/all?page=" + strconv.Itoa(page),
		route:  "/blogs/type/all",
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	out.Response.Page = page
	return &out.Response, nil
}

func (c *Client) GetPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	var out response[model.Post]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   postPath(id),
		route:  "/blogs/{id}",
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out.Response, nil
}

// CreatePost sends everything but the server-owned fields and returns the
// stored post.
func (c *Client) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	var out response[model.Post]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/blogs",
		body:   in,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &out.Response, nil
}

// UpdatePost sends the full post, id included.
func (c *Client) UpdatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	if p.ID == "" {
		return nil, ErrMissingID
	}
	var out response[model.Post]
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   postPath(p.ID),
		route:  "/blogs/{id}",
		body:   p,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	if out.Response.ID == "" {
		// Some deployments answer an update with a bare acknowledgement.
		return p.Clone(), nil
	}
	return &out.Response, nil
}

// DeletePost soft-deletes a post; RestorePost brings it back.
func (c *Client) DeletePost(ctx context.Context, id model.PostID) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   postPath(id),
		route:  "/blogs/{id}",
		auth:   true,
	})
}

func (c *Client) RestorePost(ctx context.Context, id model.PostID) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   postPath(id),
		route:  "/blogs/{id}",
		body:   map[string]bool{"isDeleted": false},
		auth:   true,
	})
}
