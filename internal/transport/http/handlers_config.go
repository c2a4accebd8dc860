package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"targetkit/internal/platform/config"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	"targetkit/pkg/platform/httputil"
	"targetkit/pkg/requestcontext"
)

// TokenProvider hands out upstream access tokens.
type TokenProvider interface {
	Token(ctx context.Context) (upstream.Token, error)
}

type WorkspacesResponse struct {
	Workspaces []workspace.Workspace `json:"workspaces"`
}

type ConfigResponse struct {
	HasConfig     bool     `json:"hasConfig"`
	ClientID      string   `json:"clientId"`
	Tenant        string   `json:"tenant"`
	MissingFields []string `json:"missingFields"`
}

// ConfigHandler serves the workspace list, the credential status and the
// token exchange used by the browser UI.
type ConfigHandler struct {
	catalog *workspace.Catalog
	target  config.Target
	tokens  TokenProvider
	logger  *slog.Logger
}

func NewConfigHandler(catalog *workspace.Catalog, target config.Target, tokens TokenProvider, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{catalog: catalog, target: target, tokens: tokens, logger: logger}
}

func (h *ConfigHandler) Register(r chi.Router) {
	r.Get("/workspaces", h.handleWorkspaces)
	r.Get("/config", h.handleConfig)
	r.Post("/auth/token", h.handleToken)
}

func (h *ConfigHandler) handleWorkspaces(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, WorkspacesResponse{Workspaces: h.catalog.All()})
}

func (h *ConfigHandler) handleConfig(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ConfigResponse{
		HasConfig:     h.target.HasConfig(),
		ClientID:      h.target.ClientID,
		Tenant:        h.target.Tenant,
		MissingFields: h.target.MissingFields(),
	})
}

func (h *ConfigHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, err := h.tokens.Token(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "token exchange failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, upstream.ToDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tok)
}
