package newsapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/me/newsletter/pkg/model"
)

// newsEnvelope accepts both response shapes seen from GET /news: the
// nested "pagination" block and the flat totalPages/totalItems fields.
type newsEnvelope struct {
	News       []model.News    `json:"news"`
	Pagination *newsPagination `json:"pagination"`

	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	CurrentPage int `json:"currentPage"`
}

type newsPagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	Limit           int  `json:"limit"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// page normalizes the envelope. The nested block wins when both are present.
func (e *newsEnvelope) page(q model.NewsQuery) *model.NewsPage {
	p := &model.NewsPage{News: e.News, Limit: q.Limit}
	if p.News == nil {
		p.News = []model.News{}
	}

	if pg := e.Pagination; pg != nil {
		p.CurrentPage = pg.CurrentPage
		p.TotalPages = pg.TotalPages
		p.TotalItems = pg.TotalCount
		p.HasNext = pg.HasNextPage
		p.HasPrevious = pg.HasPreviousPage
		if pg.Limit > 0 {
			p.Limit = pg.Limit
		}
	} else {
		p.CurrentPage = e.CurrentPage
		p.TotalPages = e.TotalPages
		p.TotalItems = e.TotalItems
		p.HasNext = p.CurrentPage < p.TotalPages
		p.HasPrevious = p.CurrentPage > 1
	}
	if p.CurrentPage == 0 {
		p.CurrentPage = q.Page
		p.HasNext = p.CurrentPage < p.TotalPages
		p.HasPrevious = p.CurrentPage > 1
	}
	return p
}

// GetNews fetches one page of news (GET /news).
func (c *Client) GetNews(ctx context.Context, q model.NewsQuery) (*model.NewsPage, error) {
	q.Clamp()

	var env newsEnvelope
	err := c.call(ctx, request{
		op:     "get news",
		method: http.MethodGet,
		path:   "/news",
		query:  q.Values(),
		retry:  true,
	}, &env)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("news page received",
		"page", env.CurrentPage, "items", len(env.News), "has_pagination", env.Pagination != nil)
	return env.page(q), nil
}

// GetNewsItem fetches a single news item (GET /news/:id).
func (c *Client) GetNewsItem(ctx context.Context, id int) (*model.News, error) {
	var out model.News
	err := c.call(ctx, request{
		op:     "get news item",
		method: http.MethodGet,
		path:   "/news/" + strconv.Itoa(id),
		retry:  true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
