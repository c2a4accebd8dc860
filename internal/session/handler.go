package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"targetkit/pkg/platform/httputil"
	"targetkit/pkg/requestcontext"
)

// CookieName is the session cookie set on login.
const CookieName = "targetkit_session"

// LoginRequest accepts the field names the login form has used over time.
type LoginRequest struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Pw       string `json:"pw,omitempty"`
}

func (r *LoginRequest) Normalize() {
	if r.ID == "" {
		r.ID = r.Username
	}
	if r.Password == "" {
		r.Password = r.Pw
	}
	r.ID = strings.TrimSpace(r.ID)
	r.Password = strings.TrimSpace(r.Password)
}

type RedirectResponse struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect"`
}

// Authenticator is the login surface the handler needs.
type Authenticator interface {
	Login(ctx context.Context, id, password string) (*Session, error)
	Logout(ctx context.Context, token string)
}

type Handler struct {
	auth         Authenticator
	secureCookie bool
	logger       *slog.Logger
}

func NewHandler(auth Authenticator, secureCookie bool, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, secureCookie: secureCookie, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, err := h.auth.Login(ctx, req.ID, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, RedirectResponse{OK: true, Redirect: "/"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		h.auth.Logout(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, RedirectResponse{OK: true, Redirect: "/login"})
}
