package handlers

import (
	"net/http"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/logger"
)

// Reload triggers a manual reload of the archive profiles.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeError(w, http.StatusConflict, "no profiles file configured")
			return
		}
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual profile reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload triggered"})
		default:
			d.Logger.Warn("profile reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "reload already in progress")
		}
	}
}
