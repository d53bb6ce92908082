package newsapi

import (
	"context"
	"net/http"

	"github.com/me/newsletter/pkg/model"
)

type categoriesEnvelope struct {
	Categories []model.Category `json:"categories"`
	TotalCount int              `json:"totalCount"`
}

// GetCategories lists all categories (GET /categories).
//
// Failures other than an authorization failure degrade to an empty list;
// an UnauthorizedError is still returned so the top-level handler sees it.
func (c *Client) GetCategories(ctx context.Context) ([]model.Category, error) {
	var env categoriesEnvelope
	err := c.call(ctx, request{
		op:     "get categories",
		method: http.MethodGet,
		path:   "/categories",
		retry:  true,
	}, &env)
	if err != nil {
		if IsUnauthorized(err) {
			return nil, err
		}
		c.logger.Warn("categories unavailable", "error", err)
		return []model.Category{}, nil
	}
	if env.Categories == nil {
		return []model.Category{}, nil
	}
	return env.Categories, nil
}

// GetPreferenceCategories lists the categories a reader may subscribe to
// (GET /preferences).
func (c *Client) GetPreferenceCategories(ctx context.Context) ([]model.Category, error) {
	var env categoriesEnvelope
	err := c.call(ctx, request{
		op:     "get preference categories",
		method: http.MethodGet,
		path:   "/preferences",
		retry:  true,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Categories == nil {
		return []model.Category{}, nil
	}
	return env.Categories, nil
}
