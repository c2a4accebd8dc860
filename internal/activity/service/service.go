// Package service implements the activity endpoints. Only activities recorded
// in the created-activity ledger are listed, deleted or edited.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"targetkit/internal/activity/models"
	ledgermodels "targetkit/internal/ledger/models"
	"targetkit/internal/upstream"
	"targetkit/internal/workspace"
	dErrors "targetkit/pkg/domain-errors"
	ksync "targetkit/pkg/platform/sync"
	"targetkit/pkg/requestcontext"
)

const (
	msgNotOwnedDelete  = "This activity was not registered by this app. Only activities you created via this app can be deleted here."
	msgNotOwnedUpdate  = "Only activities created via this app can be updated."
	msgLoadForUpdate   = "Failed to load activity for update."
	msgNoProperties    = "No properties found for this workspace. Non-default workspaces require at least one property."
	msgActivityIDEmpty = "Activity ID is required."
)

// Upstream is the subset of the upstream client used for activities.
type Upstream interface {
	ListActivities(ctx context.Context, workspaceID string) ([]upstream.Item, error)
	GetActivity(ctx context.Context, activityID string) (upstream.Item, error)
	DeleteActivity(ctx context.Context, activityID string) error
	PatchActivity(ctx context.Context, activityID, workspaceID string, patch any) (upstream.Item, error)
	CreateActivity(ctx context.Context, workspaceID string, payload any) (upstream.Item, error)
	SetActivityState(ctx context.Context, activityID, state string) (upstream.Item, error)
}

// Ledger tracks which activities this app created.
type Ledger interface {
	Record(ctx context.Context, owner ledgermodels.Owner, activityID string) error
	Forget(ctx context.Context, owner ledgermodels.Owner, activityID string) error
	IDsOwnedBy(ctx context.Context, owner ledgermodels.Owner) ledgermodels.IDSet
	RequireOwned(ctx context.Context, owner ledgermodels.Owner, activityID string) error
}

// Properties returns property ids attached to a workspace.
type Properties interface {
	IDsForWorkspace(ctx context.Context, workspaceID string) []any
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
	ledger      Ledger
	properties  Properties
	workspaces  *workspace.Catalog
	owner       ledgermodels.Owner
	locks       *ksync.KeyedMutex
	logger      *slog.Logger
	fanoutLimit int
}

// New builds the service. owner is the tenant and client id the upstream
// client authenticates as; ledger entries are scoped to it.
func New(up Upstream, ledger Ledger, properties Properties, workspaces *workspace.Catalog, owner ledgermodels.Owner, opts ...Option) *Service {
	s := &Service{
		upstream:    up,
		ledger:      ledger,
		properties:  properties,
		workspaces:  workspaces,
		owner:       owner,
		locks:       ksync.NewKeyedMutex(0),
		logger:      slog.Default(),
		fanoutLimit: workspace.DefaultFanoutLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the caller's activities from one workspace, or from every
// workspace when workspaceID is blank.
func (s *Service) List(ctx context.Context, workspaceID string) ([]upstream.Item, error) {
	var items []upstream.Item
	if workspaceID != "" {
		list, err := s.upstream.ListActivities(ctx, workspaceID)
		if err != nil {
			return nil, upstream.ToDomain(err)
		}
		items = upstream.TagWorkspace(list, workspaceID, s.workspaces.NameOf(workspaceID))
	} else {
		var failures []workspace.Failure
		items, failures = workspace.CollectAll(ctx, s.workspaces, s.fanoutLimit,
			func(ctx context.Context, ws workspace.Workspace) ([]upstream.Item, error) {
				list, err := s.upstream.ListActivities(ctx, ws.ID)
				if err != nil {
					return nil, err
				}
				return upstream.TagWorkspace(list, ws.ID, ws.Name), nil
			})
		for _, f := range failures {
			s.logger.WarnContext(ctx, "skipping workspace in activity listing",
				"workspace_id", f.Workspace.ID,
				"error", f.Err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		if len(failures) == len(s.workspaces.All()) {
			return nil, upstream.ToDomain(failures[0].Err)
		}
	}

	owned := s.ledger.IDsOwnedBy(ctx, s.owner)
	mine := make([]upstream.Item, 0, len(items))
	for _, it := range items {
		if owned.Has(it.ID("activityId")) {
			mine = append(mine, it)
		}
	}
	return mine, nil
}

// Get returns the upstream activity detail. Reads are not ownership-gated.
func (s *Service) Get(ctx context.Context, activityID string) (upstream.Item, error) {
	if activityID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, msgActivityIDEmpty)
	}
	activity, err := s.upstream.GetActivity(ctx, activityID)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	return activity, nil
}

// Delete removes an owned activity upstream and then from the ledger.
func (s *Service) Delete(ctx context.Context, activityID string) (*models.ActionResponse, error) {
	if activityID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, msgActivityIDEmpty)
	}
	var resp *models.ActionResponse
	err := s.locks.Do(activityID, func() (err error) {
		resp, err = s.deleteOwned(ctx, activityID)
		return err
	})
	return resp, err
}

func (s *Service) deleteOwned(ctx context.Context, activityID string) (*models.ActionResponse, error) {
	if err := s.ledger.RequireOwned(ctx, s.owner, activityID); err != nil {
		return nil, ownershipError(err, msgNotOwnedDelete)
	}
	if err := s.upstream.DeleteActivity(ctx, activityID); err != nil {
		return nil, upstream.ToDomain(err)
	}
	if err := s.ledger.Forget(ctx, s.owner, activityID); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "activity deleted",
		"activity_id", activityID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.ActionResponse{Success: true, ActivityID: activityID}, nil
}

// UpdateOptions points existing options of an owned activity at new offers.
// Updates naming an unknown optionLocalId, or without an offerId, are ignored.
func (s *Service) UpdateOptions(ctx context.Context, activityID string, updates []models.OptionUpdate) (upstream.Item, error) {
	if activityID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, msgActivityIDEmpty)
	}
	var patched upstream.Item
	err := s.locks.Do(activityID, func() (err error) {
		patched, err = s.updateOwnedOptions(ctx, activityID, updates)
		return err
	})
	return patched, err
}

func (s *Service) updateOwnedOptions(ctx context.Context, activityID string, updates []models.OptionUpdate) (upstream.Item, error) {
	if err := s.ledger.RequireOwned(ctx, s.owner, activityID); err != nil {
		return nil, ownershipError(err, msgNotOwnedUpdate)
	}

	activity, err := s.upstream.GetActivity(ctx, activityID)
	if err != nil {
		status := http.StatusInternalServerError
		if ue, ok := upstream.AsError(err); ok && ue.Status >= http.StatusBadRequest {
			status = ue.Status
		}
		return nil, dErrors.WithStatus(upstreamCode(err), status, msgLoadForUpdate, err)
	}

	workspaceID := upstream.IDString(activity["workspace"])
	if workspaceID == "" {
		workspaceID = upstream.IDString(activity["workspaceId"])
	}
	merged := MergeOptions(activity["options"], updates)

	patched, err := s.upstream.PatchActivity(ctx, activityID, workspaceID, map[string]any{"options": merged})
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	if patched == nil {
		patched = upstream.Item{"success": true}
	}
	return patched, nil
}

// RemoveFromMine forgets an activity without touching it upstream.
func (s *Service) RemoveFromMine(ctx context.Context, activityID string) (*models.ActionResponse, error) {
	if err := s.ledger.Forget(ctx, s.owner, activityID); err != nil {
		return nil, err
	}
	return &models.ActionResponse{Success: true, ActivityID: activityID}, nil
}

// Create builds an A/B activity serving the offer and records it as ours.
// Non-default workspaces need at least one property attached.
func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.CreateResponse, error) {
	ws := s.workspaces.OrDefault(req.WorkspaceID)

	var propertyIDs []any
	if !s.workspaces.IsDefault(ws) {
		propertyIDs = s.properties.IDsForWorkspace(ctx, ws)
		if len(propertyIDs) == 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, msgNoProperties)
		}
	}

	payload := models.NewABActivity(req.Name, req.ActivityStatus, ws, NumericOrRaw(req.OfferID), propertyIDs)
	created, err := s.upstream.CreateActivity(ctx, ws, payload)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}

	activityID := created.ID("activityId")
	if err := s.ledger.Record(ctx, s.owner, activityID); err != nil {
		s.logger.ErrorContext(ctx, "activity created but not recorded",
			"activity_id", activityID,
			"workspace_id", ws,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}
	s.logger.InfoContext(ctx, "activity created",
		"activity_id", activityID,
		"workspace_id", ws,
		"property_count", len(propertyIDs),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.CreateResponse{ActivityID: activityID, Activity: created}, nil
}

// SetState changes the activity state upstream.
func (s *Service) SetState(ctx context.Context, activityID, state string) (*models.StateResponse, error) {
	data, err := s.upstream.SetActivityState(ctx, activityID, state)
	if err != nil {
		return nil, upstream.ToDomain(err)
	}
	return &models.StateResponse{Success: true, ActivityID: activityID, State: state, Data: data}, nil
}

// MergeOptions returns existing with offer ids replaced for every option whose
// optionLocalId matches an update. Options are matched by string form so
// numeric and string ids compare equal.
func MergeOptions(existing any, updates []models.OptionUpdate) []any {
	list, _ := existing.([]any)
	offers := make(map[string]any, len(updates))
	known := make(map[string]bool, len(list))
	for _, raw := range list {
		if opt, ok := raw.(map[string]any); ok {
			known[upstream.IDString(opt["optionLocalId"])] = true
		}
	}
	for _, u := range updates {
		lid := upstream.IDString(u.OptionLocalID)
		if u.OptionLocalID == nil || u.OfferID == nil || !known[lid] {
			continue
		}
		offers[lid] = NumericOrRaw(u.OfferID)
	}

	merged := make([]any, 0, len(list))
	for _, raw := range list {
		opt, ok := raw.(map[string]any)
		if !ok {
			merged = append(merged, raw)
			continue
		}
		if offerID, ok := offers[upstream.IDString(opt["optionLocalId"])]; ok {
			next := make(map[string]any, len(opt))
			for k, v := range opt {
				next[k] = v
			}
			next["offerId"] = offerID
			merged = append(merged, next)
			continue
		}
		merged = append(merged, opt)
	}
	return merged
}

// NumericOrRaw converts ids that parse as a non-zero integer to int64 and
// returns anything else unchanged.
func NumericOrRaw(v any) any {
	if n, err := strconv.ParseInt(upstream.IDString(v), 10, 64); err == nil && n != 0 {
		return n
	}
	return v
}

func ownershipError(err error, message string) error {
	if dErrors.HasCode(err, dErrors.CodeForbidden) {
		return dErrors.New(dErrors.CodeForbidden, message)
	}
	return err
}

func upstreamCode(err error) dErrors.Code {
	if de, ok := upstream.ToDomain(err).(*dErrors.Error); ok {
		return de.Code
	}
	return dErrors.CodeInternal
}
