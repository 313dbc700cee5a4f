package handlers

import (
	"net/http"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/logger"
)

// FlushCache drops every cached DataLink table from Redis.
func FlushCache(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store == nil {
			writeError(w, http.StatusConflict, "redis not configured")
			return
		}
		if err := d.Store.FlushDatalinkCache(r.Context()); err != nil {
			d.Logger.Error("failed to flush datalink cache", logger.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "datalink cache flushed"})
	}
}
