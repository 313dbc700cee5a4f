package handlers

import (
	"net/http"

	"github.com/astroview/voprod/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports readiness: when a profiles file is configured, at least
// one profile must have loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.ProfileFile == "" || d.Profiles.Count() > 0
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, readyzResponse{Ready: ready})
	}
}
