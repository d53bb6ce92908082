package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/newsletter/internal/pagination"
	"github.com/me/newsletter/pkg/model"
)

// pageLink is one entry of the rendered pagination window.
type pageLink struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

// HandleDashboard renders the news list with filters and pagination.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	api := ManagerFromContext(ctx).API()
	q := parseNewsQuery(r)

	data := ui.pageData(r, "Dashboard")
	data["Query"] = q
	data["Periods"] = model.Periods
	data["Filtered"] = q.Period != model.PeriodAll || q.Category != ""

	page, err := api.GetNews(ctx, q)
	if err != nil {
		if ui.handleUnauthorized(w, r, err) {
			return
		}
		ui.logger.Warn("load news failed", "error", err)
		data["NewsError"] = "Could not load news. Try again later."
		page = &model.NewsPage{CurrentPage: q.Page}
	}
	data["Page"] = page

	categories, err := api.GetCategories(ctx)
	if err != nil && ui.handleUnauthorized(w, r, err) {
		return
	}
	data["Categories"] = categories

	window := pagination.Window(page.CurrentPage, page.TotalPages)
	data["Pagination"] = window
	data["PageLinks"] = pageLinks(q, window)
	data["PrevURL"] = dashboardURL(q.WithPage(window.PrevPage))
	data["NextURL"] = dashboardURL(q.WithPage(window.NextPage))

	ui.render(w, "dashboard", data)
}

// HandleNewsDetail renders one news item.
func (ui *UI) HandleNewsDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		ui.renderNotFound(w, r, "News not found")
		return
	}

	item, err := ManagerFromContext(r.Context()).API().GetNewsItem(r.Context(), id)
	if err != nil {
		ui.handleAPIError(w, r, "news", err)
		return
	}

	data := ui.pageData(r, item.Title)
	data["News"] = item
	data["Back"] = backURL(r)
	ui.render(w, "news", data)
}

// parseNewsQuery reads page, period and category. Invalid values fall back
// to the defaults.
func parseNewsQuery(r *http.Request) model.NewsQuery {
	q := model.DefaultNewsQuery()
	values := r.URL.Query()

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if period, err := model.ParsePeriod(values.Get("period")); err == nil {
		q.Period = period
	}
	q.Category = strings.TrimSpace(values.Get("category"))
	return q
}

func dashboardURL(q model.NewsQuery) string {
	v := q.Values()
	v.Del("limit")
	if q.Page <= 1 {
		v.Del("page")
	}
	if enc := v.Encode(); enc != "" {
		return "/dashboard?" + enc
	}
	return "/dashboard"
}

func pageLinks(q model.NewsQuery, window pagination.Pages) []pageLink {
	links := make([]pageLink, 0, len(window.Items))
	for _, it := range window.Items {
		if it.Ellipsis {
			links = append(links, pageLink{Label: "…", Ellipsis: true})
			continue
		}
		links = append(links, pageLink{
			Label:   strconv.Itoa(it.Page),
			URL:     dashboardURL(q.WithPage(it.Page)),
			Current: it.Current,
		})
	}
	return links
}

// backURL returns the dashboard page the user came from, if any.
func backURL(r *http.Request) string {
	ref := r.Referer()
	if i := strings.Index(ref, "/dashboard"); i >= 0 {
		return ref[i:]
	}
	return "/dashboard"
}
