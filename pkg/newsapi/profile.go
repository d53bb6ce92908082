package newsapi

import (
	"context"
	"net/http"

	"github.com/me/newsletter/pkg/model"
)

// GetProfile fetches the signed-in reader's profile (GET /user/profile).
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	err := c.call(ctx, request{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/user/profile",
		retry:  true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the reader's name (PUT /user/profile).
func (c *Client) UpdateProfile(ctx context.Context, in model.UpdateProfileRequest) (*model.Profile, error) {
	var out model.Profile
	err := c.call(ctx, request{
		op:     "update profile",
		method: http.MethodPut,
		path:   "/user/profile",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPreferences returns the reader's selected category ids
// (GET /users/me/preferences).
func (c *Client) GetPreferences(ctx context.Context) (*model.Preferences, error) {
	var out model.Preferences
	err := c.call(ctx, request{
		op:     "get preferences",
		method: http.MethodGet,
		path:   "/users/me/preferences",
		retry:  true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.CategoryIDs == nil {
		out.CategoryIDs = []int{}
	}
	return &out, nil
}

// UpdatePreferences replaces the reader's category selection
// (PUT /users/me/preferences).
func (c *Client) UpdatePreferences(ctx context.Context, in model.UpdatePreferencesRequest) (*model.UpdatePreferencesResponse, error) {
	if in.CategoryIDs == nil {
		in.CategoryIDs = []int{}
	}
	var out model.UpdatePreferencesResponse
	err := c.call(ctx, request{
		op:     "update preferences",
		method: http.MethodPut,
		path:   "/users/me/preferences",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
