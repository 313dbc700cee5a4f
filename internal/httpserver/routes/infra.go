package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/httpserver/handlers"
	"github.com/astroview/voprod/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))

	admin := r.With(mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger))
	admin.Get("/infra", handlers.Infra(d))
	admin.Post("/reload", handlers.Reload(d))
	admin.Post("/flush-cache", handlers.FlushCache(d))
}
