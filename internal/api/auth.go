package api

import (
	"context"
	"errors"
	"net/http"
)

var ErrNoToken = errors.New("sign-in returned no token")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signin",
		body:   creds,
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}
