package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/astroview/voprod/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool     `json:"ok"`
	Count    *int     `json:"count,omitempty"`
	Profiles []string `json:"profiles,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Impact   string   `json:"impact,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionCount := d.Sessions.Count()
		redisStatus := checkRedis(d)

		components := map[string]componentStatus{
			"profiles": {
				OK:       d.ProfileFile == "" || d.Profiles.Count() > 0,
				Profiles: d.Profiles.Names(),
			},
			"sessions": {
				OK:    true,
				Count: &sessionCount,
			},
			"redis": redisStatus,
		}

		mode := "full"
		if !redisStatus.OK {
			mode = "memory-only"
		}
		writeJSON(w, http.StatusOK, infraResponse{Mode: mode, Components: components})
	}
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "sessions and datalink cache are memory-only",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "session persistence and datalink cache unavailable",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
