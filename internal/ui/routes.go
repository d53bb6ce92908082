package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(ui.BrowserSessionMiddleware)

		// Public routes (no auth required).
		r.Group(func(r chi.Router) {
			r.Use(ui.RedirectIfSignedIn)
			r.Get("/sign-in", ui.HandleSignIn)
			r.Post("/sign-in", ui.HandleSignInPost)
			r.Get("/sign-up", ui.HandleSignUp)
			r.Post("/sign-up", ui.HandleSignUpPost)
		})

		// Signing out only needs the browser session, so it works while
		// the backend is unreachable.
		r.Post("/logout", ui.HandleLogout)

		// Protected routes (auth required).
		r.Group(func(r chi.Router) {
			r.Use(ui.GuardMiddleware)

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			})
			r.Get("/dashboard", ui.HandleDashboard)
			r.Get("/news/{id}", ui.HandleNewsDetail)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", ui.HandleProfile)
				r.Post("/", ui.HandleProfilePost)
				r.Post("/preferences", ui.HandlePreferencesPost)
			})
		})
	})

	r.NotFound(ui.HandleNotFound)
}
