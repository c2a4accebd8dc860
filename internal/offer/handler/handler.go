package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"targetkit/internal/offer/models"
	"targetkit/internal/upstream"
	"targetkit/pkg/platform/httputil"
	"targetkit/pkg/requestcontext"
)

// Service defines the offer operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, workspaceID string) ([]upstream.Item, error)
	Get(ctx context.Context, offerID, workspaceID string) (*models.LookupResult, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.CreateResponse, error)
}

type Handler struct {
	offers Service
	logger *slog.Logger
}

func New(offers Service, logger *slog.Logger) *Handler {
	return &Handler{offers: offers, logger: logger}
}

// Register mounts the offer routes. Static paths are registered before the
// {id} pattern so "list" is never treated as an offer id.
func (h *Handler) Register(r chi.Router) {
	r.Get("/offers/list", h.handleList)
	r.Post("/offers/create", h.handleCreate)
	r.Get("/offers/{id}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspaceId"))

	offers, err := h.offers.List(ctx, workspaceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list offers",
			"workspace_id", workspaceID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{Offers: offers})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offerID := strings.TrimSpace(chi.URLParam(r, "id"))
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspaceId"))

	res, err := h.offers.Get(ctx, offerID, workspaceID)
	if err != nil {
		h.logger.InfoContext(ctx, "offer lookup failed",
			"offer_id", offerID,
			"workspace_id", workspaceID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.offers.Create(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create offer",
			"workspace_id", req.WorkspaceID,
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
