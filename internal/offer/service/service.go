// Package service implements offer listing, lookup and creation against the
// upstream content API.
package service

import (
	"context"
	"log/slog"

	"targetkit/internal/offer/models"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	"targetkit/pkg/requestcontext"
)

// Upstream is the subset of the upstream client the offer service needs.
type Upstream interface {
	OfferFetcher
	ListOffers(ctx context.Context, workspaceID string) ([]upstream.Item, error)
	CreateOffer(ctx context.Context, workspaceID, name, content string) (upstream.Item, error)
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithFanoutLimit(n int) Option {
	return func(s *Service) {
		s.fanoutLimit = n
	}
}

type Service struct {
	upstream    Upstream
	resolver    *Resolver
	workspaces  *workspace.Catalog
	logger      *slog.Logger
	fanoutLimit int
}

func New(up Upstream, resolver *Resolver, workspaces *workspace.Catalog, opts ...Option) *Service {
	s := &Service{
		upstream:    up,
		resolver:    resolver,
		workspaces:  workspaces,
		logger:      slog.Default(),
		fanoutLimit: workspace.DefaultFanoutLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns offers from one workspace, or from every workspace when
// workspaceID is blank. Items carry workspaceId and workspaceName.
func (s *Service) List(ctx context.Context, workspaceID string) ([]upstream.Item, error) {
	if workspaceID != "" {
		items, err := s.upstream.ListOffers(ctx, workspaceID)
		if err != nil {
			return nil, upstream.ToDomain(err)
		}
		return upstream.TagWorkspace(items, workspaceID, s.workspaces.NameOf(workspaceID)), nil
	}

	items, failures := workspace.CollectAll(ctx, s.workspaces, s.fanoutLimit,
		func(ctx context.Context, ws workspace.Workspace) ([]upstream.Item, error) {
			list, err := s.upstream.ListOffers(ctx, ws.ID)
			if err != nil {
				return nil, err
			}
			return upstream.TagWorkspace(list, ws.ID, ws.Name), nil
		})
	for _, f := range failures {
		s.logger.WarnContext(ctx, "skipping workspace in offer listing",
			"workspace_id", f.Workspace.ID,
			"error", f.Err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if len(failures) == len(s.workspaces.All()) {
		return nil, upstream.ToDomain(failures[0].Err)
	}
	return items, nil
}

// Get resolves an offer across workspaces.
func (s *Service) Get(ctx context.Context, offerID, workspaceID string) (*models.LookupResult, error) {
	return s.resolver.Resolve(ctx, offerID, workspaceID)
}

// Create stores an HTML offer in the given workspace (default when blank).
func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.CreateResponse, error) {
	ws := s.workspaces.OrDefault(req.WorkspaceID)
	created, err := s.upstream.CreateOffer(ctx, ws, req.Name, req.Content)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	offerID := created.ID("offerId")
	s.logger.InfoContext(ctx, "offer created",
		"offer_id", offerID,
		"workspace_id", ws,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.CreateResponse{OfferID: offerID, Offer: created}, nil
}
