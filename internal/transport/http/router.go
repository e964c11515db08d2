// Package httptransport assembles the public HTTP surface: wizard routes,
// health and metrics endpoints, and the shared middleware chain.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enrolld/internal/platform/middleware"
	"enrolld/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Registrar mounts a feature's routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs.
type Deps struct {
	Logger   *slog.Logger
	Wizard   Registrar
	Checkers map[string]HealthChecker
}

// NewRouter builds the full router with the standard middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	// The score validation step may spend up to 80s in upstream retries.
	r.Use(middleware.Timeout(90 * time.Second))

	d.Wizard.Register(r)

	r.Get("/healthz", handleHealth(d.Checkers))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// handleHealth pings every dependency and reports per-dependency status.
// Any failing dependency turns the overall response into a 503.
func handleHealth(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checkers))
		for name, c := range checkers {
			if err := c.Health(ctx); err != nil {
				deps[name] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status":       statusWord(status),
			"dependencies": deps,
		})
	}
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
