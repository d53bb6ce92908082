// Package pagination computes the page links shown under a news listing.
package pagination

import "strconv"

// maxPlain is the largest total rendered without ellipses.
const maxPlain = 7

// Item is one slot in the window: a page link or an ellipsis.
type Item struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Pages is the rendered window plus navigation state.
type Pages struct {
	Items    []Item
	Current  int
	Total    int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// Visible reports whether there is anything to render.
func (p Pages) Visible() bool {
	return len(p.Items) > 0
}

// Window returns the visible pages for current out of total. Totals of one
// page or less render nothing; up to seven pages are all shown; larger
// totals show the first and last page, two neighbours either side of
// current, and an ellipsis for each gap.
func Window(current, total int) Pages {
	if total < 0 {
		total = 0
	}
	current = max(1, current)
	if total > 0 {
		current = min(current, total)
	}

	p := Pages{
		Current:  current,
		Total:    total,
		HasPrev:  current > 1,
		HasNext:  current < total,
		PrevPage: max(1, current-1),
		NextPage: min(max(total, 1), current+1),
	}
	if total <= 1 {
		return p
	}

	page := func(n int) Item { return Item{Page: n, Current: n == current} }

	if total <= maxPlain {
		for n := 1; n <= total; n++ {
			p.Items = append(p.Items, page(n))
		}
		return p
	}

	start := max(2, current-2)
	end := min(total-1, current+2)

	p.Items = append(p.Items, page(1))
	if start > 2 {
		p.Items = append(p.Items, Item{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		p.Items = append(p.Items, page(n))
	}
	if end < total-1 {
		p.Items = append(p.Items, Item{Ellipsis: true})
	}
	p.Items = append(p.Items, page(total))
	return p
}

// Labels renders the window as strings, "…" standing for a gap. The CLI
// prints it and tests compare against it.
func (p Pages) Labels() []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		switch {
		case it.Ellipsis:
			out = append(out, "…")
		case it.Current:
			out = append(out, "["+strconv.Itoa(it.Page)+"]")
		default:
			out = append(out, strconv.Itoa(it.Page))
		}
	}
	return out
}
