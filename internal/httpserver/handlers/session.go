package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
)

type selectRequest struct {
	SessionID string `json:"sessionId"`
	LookupKey string `json:"lookupKey"`
	MenuKey   string `json:"menuKey"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

// Select records the user's menu choice so the next resolution of the
// same row (or, for grids, another row) restores it.
func Select(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.LookupKey == "" || req.MenuKey == "" {
			writeError(w, http.StatusBadRequest, "lookupKey and menuKey are required")
			return
		}

		sess, _ := d.Sessions.GetOrCreate(req.SessionID)
		sess.Ctx.UpdateActiveKey(req.LookupKey, req.MenuKey)

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID})
	}
}

type cutoutSizeRequest struct {
	SessionID    string  `json:"sessionId"`
	ComponentKey string  `json:"componentKey,omitempty"`
	SizeDeg      float64 `json:"sizeDeg"`
}

// CutoutSize sets the session's cutout size in degrees.
func CutoutSize(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cutoutSizeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.SizeDeg <= 0 {
			writeError(w, http.StatusBadRequest, "sizeDeg must be > 0")
			return
		}
		key := req.ComponentKey
		if key == "" {
			key = products.DefaultComponentKey
		}

		sess, _ := d.Sessions.GetOrCreate(req.SessionID)
		sess.Ctx.SetComponentValue(key, products.CutoutSizeKey,
			strconv.FormatFloat(req.SizeDeg, 'f', -1, 64))

		persistSession(d, r, sess)
		writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID})
	}
}

// SessionInfo returns the persisted shape of one session.
func SessionInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess := d.Sessions.Get(id)
		if sess == nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeJSON(w, http.StatusOK, sess.ToRecord())
	}
}

// SessionDelete drops a session from the registry and, best effort,
// from Redis.
func SessionDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		d.Sessions.Delete(id)
		if d.Store != nil {
			if err := d.Store.DeleteSession(r.Context(), id); err != nil {
				d.Logger.Warn("failed to delete session from redis",
					logger.String("session_id", id), logger.Error(err))
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
