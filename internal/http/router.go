// Package httpapi assembles the HTTP surface. It is a thin transport layer:
// routing, auth middleware, and health, with all business logic behind the
// injected handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	moderationhandler "backoffice/internal/moderation/handler"
	"backoffice/internal/moderation/service"
	"backoffice/internal/platform/middleware"
	statshandler "backoffice/internal/stats/handler"
	"backoffice/pkg/platform/httputil"
	adminmw "backoffice/pkg/platform/middleware/admin"
)

// Sweeper triggers an immediate expiration sweep, bypassing the schedule.
type Sweeper interface {
	Tick(ctx context.Context, now time.Time) (service.SweepResult, error)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Deps struct {
	Moderation     *moderationhandler.Handler
	Stats          *statshandler.Handler
	TokenValidator middleware.TokenValidator
	AdminKeyHash   string
	Sweeper        Sweeper
	Health         []HealthChecker
	Logger         *slog.Logger
}

// NewRouter wires all endpoints. Admin routes require a bearer token, ops
// routes require the operator API key.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMetadata)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(deps.TokenValidator, deps.Logger))
		deps.Moderation.Routes(r)
		deps.Stats.Routes(r)
	})

	r.Route("/ops", func(r chi.Router) {
		r.Use(adminmw.RequireAdminKey(deps.AdminKeyHash, deps.Logger))
		r.Post("/sweep", handleSweep(deps.Sweeper))
	})

	return r
}

func handleSweep(sweeper Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := sweeper.Tick(r.Context(), time.Now().UTC())
		if err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "sweep failed",
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func handleHealth(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checkers {
			if c == nil {
				continue
			}
			if err := c.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
