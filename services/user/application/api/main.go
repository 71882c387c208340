package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/chatmesh/pkg/app"
	pkgauth "github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/services/user/application/handlers"
	appsvcs "github.com/ghuser/chatmesh/services/user/application/services"
)

// UserRoutes registers user endpoints on the provided chi router. Identity
// comes from the gateway via the X-User-Id header.
func UserRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Use(pkgauth.TrustIdentityHeader())
		r.Route("/users", func(r chi.Router) {
			r.Get("/", handlers.NewListUsersHandler(svcs).Execute)
			r.Get("/me", handlers.NewGetMeHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetUserHandler(svcs).Execute)
			r.Patch("/{id}", handlers.NewPatchUserHandler(svcs).Execute)
		})
	})
}
