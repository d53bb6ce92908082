package model

import (
	"net/url"
	"strconv"
	"strings"
)

// Page size defaults for GET /news.
const (
	DefaultNewsLimit = 10
	MaxNewsLimit     = 100
)

// NewsQuery configures GET /news with pagination and filtering.
type NewsQuery struct {
	Page     int
	Limit    int
	Period   Period // Optional period filter
	Category string // Optional category filter
}

// DefaultNewsQuery returns the dashboard defaults.
func DefaultNewsQuery() NewsQuery {
	return NewsQuery{Page: 1, Limit: DefaultNewsLimit}
}

// Clamp enforces limits (page >= 1, 1 <= limit <= 100).
func (q *NewsQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultNewsLimit
	}
	if q.Limit > MaxNewsLimit {
		q.Limit = MaxNewsLimit
	}
	q.Category = strings.TrimSpace(q.Category)
}

// Values encodes the query string. Empty filters are omitted.
func (q NewsQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Period != PeriodAll {
		v.Set("period", string(q.Period))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// WithPage returns a copy pointing at another page.
func (q NewsQuery) WithPage(page int) NewsQuery {
	q.Page = page
	return q
}

// NewsPage is one page of the news collection.
type NewsPage struct {
	News        []News `json:"news"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalItems  int    `json:"totalItems"`
	Limit       int    `json:"limit"`
	HasNext     bool   `json:"hasNextPage"`
	HasPrevious bool   `json:"hasPreviousPage"`
}

// Empty reports whether the page carries no items.
func (p *NewsPage) Empty() bool {
	return p == nil || len(p.News) == 0
}
