package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/httpserver/handlers"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	r.Post("/select", handlers.Select(d))
	r.Post("/cutout-size", handlers.CutoutSize(d))
	r.Get("/session/{id}", handlers.SessionInfo(d))
	r.Delete("/session/{id}", handlers.SessionDelete(d))
}
