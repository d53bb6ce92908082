package ui

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/newsletter/internal/validate"
	"github.com/me/newsletter/pkg/model"
	"github.com/me/newsletter/pkg/newsapi"
)

// categoryOption is one preference checkbox.
type categoryOption struct {
	model.Category
	Selected bool
}

// HandleProfile renders the profile and preference settings.
func (ui *UI) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	api := ManagerFromContext(ctx).API()

	profile, err := api.GetProfile(ctx)
	if err != nil {
		ui.handleAPIError(w, r, "profile", err)
		return
	}

	categories, err := api.GetPreferenceCategories(ctx)
	if err != nil {
		if ui.handleUnauthorized(w, r, err) {
			return
		}
		ui.logger.Warn("load preference categories failed", "error", err)
		if categories, err = api.GetCategories(ctx); err != nil && ui.handleUnauthorized(w, r, err) {
			return
		}
	}

	selected := make(map[int]bool)
	for _, id := range profile.PreferenceIDs() {
		selected[id] = true
	}
	options := make([]categoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, categoryOption{Category: c, Selected: selected[c.ID]})
	}

	data := ui.pageData(r, "Profile")
	data["Profile"] = profile
	data["Options"] = options
	ui.render(w, "profile", data)
}

// HandleProfilePost updates the user's name.
func (ui *UI) HandleProfilePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		profileRedirect(w, r, "error", "Invalid request")
		return
	}

	form := validate.ProfileForm{Name: r.FormValue("name")}
	if err := validate.Struct(&form); err != nil {
		profileRedirect(w, r, "error", validationMessage(err))
		return
	}

	mgr := ManagerFromContext(r.Context())
	if _, err := mgr.API().UpdateProfile(r.Context(), model.UpdateProfileRequest{Name: form.Name}); err != nil {
		if ui.handleUnauthorized(w, r, err) {
			return
		}
		ui.logger.Warn("update profile failed", "error", err)
		profileRedirect(w, r, "error", apiMessage(err, "Could not update the profile. Try again."))
		return
	}

	profileRedirect(w, r, "notice", "Profile updated.")
}

// HandlePreferencesPost saves the selected categories.
func (ui *UI) HandlePreferencesPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		profileRedirect(w, r, "error", "Invalid request")
		return
	}

	var form validate.PreferencesForm
	for _, raw := range r.Form["categoryIds"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			profileRedirect(w, r, "error", "Invalid category selection.")
			return
		}
		form.CategoryIDs = append(form.CategoryIDs, id)
	}
	if err := validate.Struct(&form); err != nil {
		profileRedirect(w, r, "error", validationMessage(err))
		return
	}

	ctx := r.Context()
	mgr := ManagerFromContext(ctx)
	userID := r.FormValue("userId")
	if userID == "" {
		if u := mgr.User(ctx); u != nil {
			userID = u.ID
		}
	}

	resp, err := mgr.API().UpdatePreferences(ctx, model.UpdatePreferencesRequest{
		UserID:      userID,
		CategoryIDs: form.CategoryIDs,
	})
	if err != nil {
		if ui.handleUnauthorized(w, r, err) {
			return
		}
		ui.logger.Warn("update preferences failed", "error", err, "status", newsapi.StatusCode(err))
		profileRedirect(w, r, "error", apiMessage(err, "Could not update preferences. Try again."))
		return
	}

	ui.logger.Info("preferences updated", "user", userID, "count", resp.UpdatedPreferences)
	profileRedirect(w, r, "notice", "Preferences updated.")
}

func profileRedirect(w http.ResponseWriter, r *http.Request, key, message string) {
	http.Redirect(w, r, "/profile?"+key+"="+url.QueryEscape(message), http.StatusSeeOther)
}
