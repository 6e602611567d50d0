// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the per-feature handlers.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amlgate/pkg/platform/middleware/auth"
	"amlgate/pkg/platform/middleware/requestid"
	"amlgate/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// Options carries router-level configuration.
type Options struct {
	// SigningKey verifies actor bearer tokens.
	SigningKey []byte
	// Authenticate gates the business routes. Disabled only in tests.
	Authenticate bool
}

// NewRouter builds the full router. Health and metrics stay outside the auth
// gate; every business route requires an authenticated actor.
func NewRouter(opts Options, logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(g chi.Router) {
		if opts.Authenticate {
			g.Use(auth.RequireActor(opts.SigningKey, logger))
		}
		for _, h := range handlers {
			h.Register(g)
		}
	})
	return r
}
