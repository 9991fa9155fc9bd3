package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports 503 while the database is unreachable. Redis only feeds the
// rate limiter, which fails open, so a Redis outage degrades but stays ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"database": checkDatabase(r.Context(), d),
			"redis":    checkRedis(r.Context(), d),
		}

		resp := readyzResponse{
			Ready:      components["database"].OK,
			Status:     determineStatus(components),
			Components: components,
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, resp)
	}
}

func determineStatus(components map[string]componentStatus) string {
	if !components["database"].OK {
		return "unavailable"
	}
	if redis := components["redis"]; !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "ok"
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	if d.Database == nil {
		return componentStatus{OK: false, Error: "not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.Database.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "rate-limit-per-instance",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "rate-limit-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:     true,
		Mode:   "shared",
		Impact: "rate-limit-shared",
	}
}
