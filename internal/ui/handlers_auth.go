package ui

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/me/newsletter/internal/validate"
	"github.com/me/newsletter/pkg/model"
	"github.com/me/newsletter/pkg/newsapi"
)

// HandleSignIn renders the sign-in page.
func (ui *UI) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	data := ui.pageData(r, "Sign in")
	data["Email"] = ""
	ui.render(w, "sign-in", data)
}

// HandleSignInPost processes the sign-in form.
func (ui *UI) HandleSignInPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/sign-in?error=Invalid+request", http.StatusSeeOther)
		return
	}

	form := validate.SignInForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	data := ui.pageData(r, "Sign in")
	data["Email"] = form.Email

	if err := validate.Struct(&form); err != nil {
		data["Email"] = form.Email // trimmed
		data["Errors"] = fieldErrors(err)
		ui.renderStatus(w, http.StatusUnprocessableEntity, "sign-in", data)
		return
	}

	mgr := ManagerFromContext(r.Context())
	resp, err := mgr.Login(r.Context(), model.SignInRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		status := http.StatusBadGateway
		data["Error"] = "Sign-in failed. Try again later."
		if newsapi.IsUnauthorized(err) || newsapi.StatusCode(err) == http.StatusBadRequest {
			status = http.StatusUnauthorized
			data["Error"] = "Invalid email or password."
		}
		ui.logger.Warn("sign-in failed", "error", err)
		ui.logger.Debug("sign-in failed for account", "email", form.Email)
		ui.renderStatus(w, status, "sign-in", data)
		return
	}

	ui.logger.Info("user signed in", "user", userID(resp.User))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleSignUp renders the account creation page.
func (ui *UI) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	data := ui.pageData(r, "Create account")
	data["Name"] = ""
	data["Email"] = ""
	ui.render(w, "sign-up", data)
}

// HandleSignUpPost creates the account and sends the user to sign-in.
func (ui *UI) HandleSignUpPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/sign-up?error=Invalid+request", http.StatusSeeOther)
		return
	}

	form := validate.SignUpForm{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	data := ui.pageData(r, "Create account")
	data["Name"] = form.Name
	data["Email"] = form.Email

	if err := validate.Struct(&form); err != nil {
		data["Name"] = form.Name // trimmed
		data["Email"] = form.Email
		data["Errors"] = fieldErrors(err)
		ui.renderStatus(w, http.StatusUnprocessableEntity, "sign-up", data)
		return
	}

	mgr := ManagerFromContext(r.Context())
	_, err := mgr.API().SignUp(r.Context(), model.SignUpRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		mgr.HandleUnauthorized(r.Context(), err)
		ui.logger.Warn("sign-up failed", "error", err)
		status := http.StatusBadGateway
		if code := newsapi.StatusCode(err); code >= 400 && code < 500 {
			status = code
		}
		data["Error"] = apiMessage(err, "Could not create the account. Try again later.")
		ui.renderStatus(w, status, "sign-up", data)
		return
	}

	ui.logger.Info("account created")
	ui.logger.Debug("account created for", "email", form.Email)
	notice := url.QueryEscape("Account created. Sign in to continue.")
	http.Redirect(w, r, "/sign-in?notice="+notice, http.StatusSeeOther)
}

// HandleLogout drops the browser's credential, ends the browser session
// and redirects to sign-in. It never contacts the backend.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	mgr := ManagerFromContext(r.Context())
	if err := mgr.Logout(r.Context()); err != nil {
		ui.renderError(w, r, "Could not sign out.", err)
		return
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := ui.store.DeleteBrowserSession(r.Context(), cookie.Value); err != nil {
			ui.logger.Warn("delete browser session failed", "error", err)
		}
	}
	ClearSessionCookie(w, ui.secure)
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

func userID(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// fieldErrors returns the per-field messages of a validation failure.
func fieldErrors(err error) map[string]string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}
