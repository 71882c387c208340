package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/chatmesh/pkg/app"
	"github.com/ghuser/chatmesh/services/auth/application/handlers"
	appsvcs "github.com/ghuser/chatmesh/services/auth/application/services"
)

// AuthRoutes registers auth endpoints on the provided chi router.
func AuthRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handlers.NewPostRegisterHandler(svcs).Execute)
			r.Post("/login", handlers.NewPostLoginHandler(svcs, a.Tokens).Execute)
			r.Post("/refresh", handlers.NewPostRefreshHandler(svcs, a.Tokens).Execute)
			r.Post("/logout", handlers.NewPostLogoutHandler(svcs, a.Tokens).Execute)
		})
	})
}
