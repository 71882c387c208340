// Package gateway is the single public entry point. It verifies access tokens,
// stamps the verified identity onto the X-User-Id header, and reverse-proxies
// to the internal services, which trust that header.
package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/config"
	"github.com/ghuser/chatmesh/pkg/httpx"
	"github.com/ghuser/chatmesh/pkg/logger"
	"github.com/ghuser/chatmesh/pkg/token"
)

// Routes mounts the proxy routes under /api on the given router.
//
// /api/auth is public: login and register happen before a token exists.
// Everything else requires a Bearer access token.
func Routes(r chi.Router, cfg *config.Config, tokens *token.Manager, log logger.Logger) error {
	authProxy, err := newProxy(cfg.AuthServiceURL, log)
	if err != nil {
		return fmt.Errorf("auth upstream: %w", err)
	}
	userProxy, err := newProxy(cfg.UserServiceURL, log)
	if err != nil {
		return fmt.Errorf("user upstream: %w", err)
	}
	chatProxy, err := newProxy(cfg.ChatServiceURL, log)
	if err != nil {
		return fmt.Errorf("chat upstream: %w", err)
	}

	r.Route("/api", func(r chi.Router) {
		// A client-supplied identity header is never forwarded; only
		// RequireAuth may set it.
		r.Use(stripIdentityHeader)

		r.Mount("/auth", authProxy)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, log))
			r.Mount("/users", userProxy)
			r.Mount("/conversations", chatProxy)
		})
	})
	return nil
}

// newProxy builds a reverse proxy to the upstream base URL. The full request
// path (including the /api prefix) is preserved, so upstream services mount
// their routes under /api as well.
func newProxy(upstream string, log logger.Logger) (http.Handler, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream URL %q needs scheme and host", upstream)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = pr.In.URL.Path
			pr.Out.URL.RawPath = pr.In.URL.RawPath
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "upstream unreachable", "upstream", target.Host, "error", err)
			httpx.JSONError(w, http.StatusBadGateway, "upstream unavailable")
		},
	}
	return proxy, nil
}

func stripIdentityHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(auth.IdentityHeader)
		next.ServeHTTP(w, r)
	})
}
