package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"targetkit/internal/offer/models"
	"targetkit/internal/platform/metrics"
	"targetkit/internal/platform/tracer"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/requestcontext"
)

// ErrNotFoundAcrossWorkspaces is wrapped by the error Resolve returns when no
// workspace yields the offer.
var ErrNotFoundAcrossWorkspaces = errors.New("offer not found in any workspace")

const notFoundMessage = "Offer not found in any workspace."

// OfferFetcher looks up a single offer in one workspace.
type OfferFetcher interface {
	GetOffer(ctx context.Context, offerID, workspaceID string) (*upstream.Offer, error)
}

// Resolver finds an offer by id, falling back across the workspace catalog
// when the preferred workspace answers 404 or 403.
type Resolver struct {
	fetcher    OfferFetcher
	workspaces *workspace.Catalog
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
}

type ResolverOption func(*Resolver)

func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithResolverTracer(t tracer.Tracer) ResolverOption {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

func NewResolver(fetcher OfferFetcher, workspaces *workspace.Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher:    fetcher,
		workspaces: workspaces,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tries preferredWorkspaceID first (the default workspace when empty).
// Only a 404/403 on that first call triggers the scan; the scan is sequential
// in catalog order and treats any failure as a miss. When every workspace
// misses, the returned error mirrors the first call's status and message.
func (r *Resolver) Resolve(ctx context.Context, offerID, preferredWorkspaceID string) (result *models.LookupResult, err error) {
	if offerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Offer ID is required.")
	}
	preferred := r.workspaces.OrDefault(preferredWorkspaceID)

	ctx, span := r.tracer.Start(ctx, tracer.SpanOfferResolve,
		tracer.String(tracer.AttrOfferID, offerID),
		tracer.String(tracer.AttrWorkspaceID, preferred),
	)
	attempts := 1
	defer func() {
		span.SetAttributes(tracer.Int(tracer.AttrAttempts, attempts))
		span.End(err)
	}()

	offer, firstErr := r.fetcher.GetOffer(ctx, offerID, preferred)
	if firstErr == nil {
		r.outcome(metrics.OutcomeDirect)
		span.SetAttributes(tracer.String(tracer.AttrFoundIn, preferred), tracer.Bool(tracer.AttrFallback, false))
		return &models.LookupResult{Offer: models.FromUpstream(offer), FoundInWorkspace: preferred}, nil
	}

	if !upstream.IsLookupMiss(firstErr) {
		r.outcome(metrics.OutcomeError)
		r.logger.WarnContext(ctx, "offer lookup failed",
			"offer_id", offerID,
			"workspace_id", preferred,
			"error", firstErr,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, upstream.ToDomain(firstErr)
	}

	for _, ws := range r.workspaces.All() {
		if ws.ID == preferred {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, r.abandoned(ctx, offerID, err)
		}
		attempts++
		if r.metrics != nil {
			r.metrics.IncrementFallbackAttempt()
		}
		offer, err := r.fetcher.GetOffer(ctx, offerID, ws.ID)
		if err != nil {
			span.AddEvent(tracer.EventFallbackMiss,
				tracer.String(tracer.AttrWorkspaceID, ws.ID),
				tracer.String("upstream.category", string(upstream.CategoryOf(err))),
			)
			continue
		}
		r.outcome(metrics.OutcomeFallback)
		r.logger.InfoContext(ctx, "offer found in fallback workspace",
			"offer_id", offerID,
			"preferred_workspace_id", preferred,
			"workspace_id", ws.ID,
			"attempts", attempts,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.SetAttributes(tracer.String(tracer.AttrFoundIn, ws.ID), tracer.Bool(tracer.AttrFallback, true))
		return &models.LookupResult{Offer: models.FromUpstream(offer), FoundInWorkspace: ws.ID}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, r.abandoned(ctx, offerID, err)
	}
	r.outcome(metrics.OutcomeNotFound)
	return nil, notFoundError(firstErr)
}

// abandoned reports a scan cut short by cancellation or the request deadline;
// the remaining workspaces were never asked, so this is not a miss.
func (r *Resolver) abandoned(ctx context.Context, offerID string, cause error) error {
	r.outcome(metrics.OutcomeError)
	r.logger.WarnContext(ctx, "offer lookup abandoned",
		"offer_id", offerID,
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(cause, dErrors.CodeTimeout, "Offer lookup for "+offerID+" did not complete.")
}

func (r *Resolver) outcome(o string) {
	if r.metrics != nil {
		r.metrics.IncrementResolverOutcome(o)
	}
}

func notFoundError(first error) error {
	ue, _ := upstream.AsError(first)
	code := dErrors.CodeNotFound
	status := http.StatusNotFound
	if ue.Status == http.StatusForbidden {
		code = dErrors.CodeForbidden
		status = http.StatusForbidden
	}
	return &dErrors.Error{
		Code:    code,
		Message: upstream.BestMessage(ue.Body, notFoundMessage),
		Err:     errors.Join(ErrNotFoundAcrossWorkspaces, first),
		Status:  status,
	}
}
