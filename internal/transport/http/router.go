package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"targetkit/internal/platform/config"
	"targetkit/internal/session"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/platform/httputil"
	"targetkit/pkg/platform/middleware/auth"
	"targetkit/pkg/platform/middleware/request"
)

// RouteRegistrar mounts a group of routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Dependencies collects everything NewRouter mounts. Login and Sessions are
// nil when no operator account is configured; Latency and Metrics are
// optional.
type Dependencies struct {
	Config     config.Server
	Logger     *slog.Logger
	Health     RouteRegistrar
	Settings   RouteRegistrar
	Offers     RouteRegistrar
	Activities RouteRegistrar
	Login      RouteRegistrar
	Sessions   auth.SessionValidator
	Latency    *request.Metrics
	Metrics    http.Handler
}

// publicAPIPaths stay reachable without a session.
var publicAPIPaths = []string{"/api/login", "/api/logout"}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata(d.Config.TrustedProxies))
	r.Use(request.Logger(d.Logger))
	if d.Latency != nil {
		r.Use(request.LatencyMiddleware(d.Latency, routePattern))
	}
	r.Use(request.CORS(d.Config.AllowedOrigin))
	if d.Config.RequestTimeout > 0 {
		r.Use(request.Timeout(d.Config.RequestTimeout))
	}
	if d.Config.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(d.Config.MaxBodyBytes))
	}
	r.Use(request.ContentTypeJSON)
	if d.Sessions != nil {
		r.Use(auth.RequireSession(d.Sessions, session.CookieName, auth.PublicPaths(publicAPIPaths...), d.Logger))
	}

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if d.Login != nil {
			d.Login.Register(api)
		}
		if d.Settings != nil {
			d.Settings.Register(api)
		}
		api.Group(func(g chi.Router) {
			g.Use(RequireTargetConfig(d.Config.Target))
			if d.Offers != nil {
				d.Offers.Register(g)
			}
			if d.Activities != nil {
				d.Activities.Register(g)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})

	return r
}

// RequireTargetConfig rejects offer and activity calls until the tenant and
// client id are configured; both scope the upstream calls and the ledger.
func RequireTargetConfig(target config.Target) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if target.Tenant == "" || target.ClientID == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
					"TARGET_TENANT and TARGET_CLIENT_ID are required."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
