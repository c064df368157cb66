package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"backoffice/internal/moderation/models"
	dErrors "backoffice/pkg/domain-errors"
	"backoffice/pkg/platform/httputil"
	"backoffice/pkg/requestcontext"
)

// Service is the slice of the lifecycle engine the moderation routes need.
type Service interface {
	Transition(ctx context.Context, kind models.EntityKind, id uuid.UUID, status models.Status, reason string) (models.Entity, error)
	Get(ctx context.Context, kind models.EntityKind, id uuid.UUID) (models.Entity, error)
	List(ctx context.Context, kind models.EntityKind, status *models.Status) ([]models.Entity, error)
}

// Handler wires the moderation HTTP endpoints to the lifecycle engine.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the moderation endpoints on an already-authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/entities/{kind}/{id}/status", h.handleTransition)
	r.Get("/entities/{kind}/{id}", h.handleGet)
	r.Get("/entities/{kind}", h.handleList)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, id, err := pathTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ent, err := h.svc.Transition(ctx, kind, id, models.Status(req.Status), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "transition rejected",
			"kind", kind,
			"entity_id", id,
			"status", req.Status,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, id, err := pathTarget(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ent, err := h.svc.Get(r.Context(), kind, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var status *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.Status(raw)
		status = &s
	}

	entities, err := h.svc.List(r.Context(), kind, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"total":    len(entities),
	})
}

func pathTarget(r *http.Request) (models.EntityKind, uuid.UUID, error) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", uuid.Nil, err
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "entity id must be a UUID")
	}
	return kind, id, nil
}
