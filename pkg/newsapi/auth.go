package newsapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/me/newsletter/pkg/model"
)

// SignIn exchanges credentials for a bearer token (POST /auth/login).
// A 401 here means wrong credentials, not an expired session.
func (c *Client) SignIn(ctx context.Context, in model.SignInRequest) (*model.SignInResponse, error) {
	var out model.SignInResponse
	err := c.call(ctx, request{
		op:     "sign in",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Token = strings.TrimSpace(out.Token)
	if out.Token == "" {
		return nil, WrapError("sign in", ErrEmptyToken)
	}
	return &out, nil
}

// SignUp registers a new account (POST /users). It does not sign in.
func (c *Client) SignUp(ctx context.Context, in model.SignUpRequest) (*model.User, error) {
	var out model.User
	err := c.call(ctx, request{
		op:     "sign up",
		method: http.MethodPost,
		path:   "/users",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Probe confirms the current credential with the cheapest protected call,
// GET /news?page=1&limit=1. It is never retried.
func (c *Client) Probe(ctx context.Context) error {
	return c.call(ctx, request{
		op:     "probe session",
		method: http.MethodGet,
		path:   "/news",
		query:  model.NewsQuery{Page: 1, Limit: 1}.Values(),
	}, nil)
}
