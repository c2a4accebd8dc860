package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"targetkit/internal/activity/models"
	"targetkit/internal/upstream"
	"targetkit/pkg/platform/httputil"
	"targetkit/pkg/requestcontext"
)

// Service defines the activity operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, workspaceID string) ([]upstream.Item, error)
	Get(ctx context.Context, activityID string) (upstream.Item, error)
	Delete(ctx context.Context, activityID string) (*models.ActionResponse, error)
	UpdateOptions(ctx context.Context, activityID string, updates []models.OptionUpdate) (upstream.Item, error)
	RemoveFromMine(ctx context.Context, activityID string) (*models.ActionResponse, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.CreateResponse, error)
	SetState(ctx context.Context, activityID, state string) (*models.StateResponse, error)
}

type Handler struct {
	activities Service
	logger     *slog.Logger
}

func New(activities Service, logger *slog.Logger) *Handler {
	return &Handler{activities: activities, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/activities/list", h.handleList)
	r.Post("/activities/create", h.handleCreate)
	r.Post("/activities/remove-from-mine", h.handleRemoveFromMine)
	r.Put("/activities/state", h.handleSetState)
	r.Get("/activities/{id}", h.handleGet)
	r.Delete("/activities/{id}", h.handleDelete)
	r.Put("/activities/{id}/options", h.handleUpdateOptions)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspaceId"))

	activities, err := h.activities.List(ctx, workspaceID)
	if err != nil {
		h.fail(ctx, w, "failed to list activities", err, "workspace_id", workspaceID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{Activities: activities})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID := strings.TrimSpace(chi.URLParam(r, "id"))

	activity, err := h.activities.Get(ctx, activityID)
	if err != nil {
		h.fail(ctx, w, "failed to get activity", err, "activity_id", activityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activity)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID := strings.TrimSpace(chi.URLParam(r, "id"))

	res, err := h.activities.Delete(ctx, activityID)
	if err != nil {
		h.fail(ctx, w, "failed to delete activity", err, "activity_id", activityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleUpdateOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID := strings.TrimSpace(chi.URLParam(r, "id"))

	req, ok := httputil.DecodeAndPrepare[models.OptionsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.activities.UpdateOptions(ctx, activityID, req.Options)
	if err != nil {
		h.fail(ctx, w, "failed to update activity options", err, "activity_id", activityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRemoveFromMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.RemoveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	activityID := upstream.IDString(req.ActivityID)
	res, err := h.activities.RemoveFromMine(ctx, activityID)
	if err != nil {
		h.fail(ctx, w, "failed to remove activity from ledger", err, "activity_id", activityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.activities.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create activity", err, "workspace_id", req.WorkspaceID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.StateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	activityID := upstream.IDString(req.ActivityID)
	res, err := h.activities.SetState(ctx, activityID, req.State)
	if err != nil {
		h.fail(ctx, w, "failed to set activity state", err, "activity_id", activityID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))
	h.logger.ErrorContext(ctx, msg, attrs...)
	httputil.WriteError(w, err)
}
