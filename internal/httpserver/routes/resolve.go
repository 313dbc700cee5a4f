package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/httpserver/handlers"
	"github.com/astroview/voprod/internal/httpserver/mw"
)

func init() { Register(registerResolve) }

func registerResolve(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Post("/resolve", handlers.Resolve(d))
	limited.Post("/related-grid", handlers.RelatedGrid(d))
	limited.Post("/grid", handlers.Grid(d))
	limited.Post("/three-color", handlers.ThreeColor(d))
	limited.Post("/descriptors", handlers.Descriptors(d))
}
