package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Category is a news category.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts string ids, as sent by the profile endpoint.
func (c *Category) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	raw, err := decodeID(a.ID)
	if err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	if raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("category id %q: %w", raw, err)
		}
		c.ID = id
	}
	c.Name = a.Name
	c.Description = a.Description
	return nil
}

// News is one news item.
type News struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary,omitempty"`
	Source      string     `json:"source,omitempty"`
	PublishedAt time.Time  `json:"publishedAt"`
	Categories  []Category `json:"categories"`
}

// Excerpt returns the summary when present, otherwise the content cut to n runes.
func (n *News) Excerpt(max int) string {
	if s := strings.TrimSpace(n.Summary); s != "" {
		return s
	}
	content := strings.TrimSpace(n.Content)
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// CategoryNames returns the names of the item's categories.
func (n *News) CategoryNames() []string {
	names := make([]string, 0, len(n.Categories))
	for _, c := range n.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Period is the publish-date filter of GET /news.
type Period string

const (
	PeriodAll   Period = ""
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Periods lists the selectable filters in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod validates a period filter. The empty string means no filter.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodAll, PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return PeriodAll, fmt.Errorf("invalid period %q (want day, week or month)", s)
	}
}

// Since returns the lower bound of the window ending at now.
// Periods are "last N days": 24 hours, 7 days, 30 days.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// Label returns a human-readable name.
func (p Period) Label() string {
	switch p {
	case PeriodDay:
		return "Today"
	case PeriodWeek:
		return "This week"
	case PeriodMonth:
		return "This month"
	default:
		return "Any time"
	}
}
