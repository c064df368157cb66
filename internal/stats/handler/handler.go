package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/activity"
	"backoffice/internal/stats"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/httputil"
	"backoffice/pkg/requestcontext"
)

const maxActivityLimit = 200

// StatsService computes the dashboard snapshot on demand.
type StatsService interface {
	Compute(ctx context.Context, now time.Time) (stats.DashboardStats, error)
}

// ActivityReader serves the raw activity feed.
type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]activity.Record, error)
}

type Handler struct {
	stats    StatsService
	activity ActivityReader
	logger   *slog.Logger
}

func New(stats StatsService, activity ActivityReader, logger *slog.Logger) *Handler {
	return &Handler{stats: stats, activity: activity, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard-stats", h.handleDashboard)
	r.Get("/activity", h.handleActivity)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.stats.Compute(ctx, requestcontext.Now(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard computation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 200"))
			return
		}
		limit = n
	}

	records, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"activities": records,
		"total":      len(records),
	})
}
