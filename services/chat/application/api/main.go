package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/chatmesh/pkg/app"
	pkgauth "github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/services/chat/application/handlers"
	appsvcs "github.com/ghuser/chatmesh/services/chat/application/services"
)

// ChatRoutes registers conversation and message endpoints on the provided chi
// router. Identity comes from the gateway via the X-User-Id header.
func ChatRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Use(pkgauth.TrustIdentityHeader())
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", handlers.NewListConversationsHandler(svcs).Execute)
			r.Post("/", handlers.NewPostConversationHandler(svcs).Execute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.NewGetConversationHandler(svcs).Execute)
				r.Get("/messages", handlers.NewListMessagesHandler(svcs).Execute)
				r.Post("/messages", handlers.NewPostMessageHandler(svcs).Execute)
			})
		})
	})
}
