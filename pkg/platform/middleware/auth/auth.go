package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"targetkit/pkg/requestcontext"
)

// SessionValidator resolves a session cookie value to the operator name.
type SessionValidator interface {
	ValidateSession(token string) (string, error)
}

// writeJSONError writes the same {error, error_code} envelope as httputil.WriteError.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","error_code":"` + code + `"}`))
}

// RequireSession guards /api/* routes with the session cookie. Paths outside
// /api/ and paths for which public returns true pass through untouched.
func RequireSession(validator SessionValidator, cookieName string, public func(path string) bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") || (public != nil && public(r.URL.Path)) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			user, err := validator.ValidateSession(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUser(ctx, user)))
		})
	}
}

// PublicPaths builds a matcher for RequireSession from exact paths.
func PublicPaths(paths ...string) func(string) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[path]
		return ok
	}
}
