package models

import (
	"strings"

	"targetkit/internal/upstream"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/validation"
)

// Activity states accepted by the upstream state endpoint.
const (
	StateSaved    = "saved"
	StateArchived = "archived"
	StateApproved = "approved"
	StateLive     = "live"
)

// CreateRequest is the body of POST /api/activities/create.
type CreateRequest struct {
	Name           string `json:"name" validate:"notblank"`
	OfferID        any    `json:"offerId" validate:"required"`
	WorkspaceID    string `json:"workspaceId"`
	ActivityStatus string `json:"activityStatus"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.WorkspaceID = strings.TrimSpace(r.WorkspaceID)
	r.ActivityStatus = strings.TrimSpace(r.ActivityStatus)
	if s, ok := r.OfferID.(string); ok {
		r.OfferID = strings.TrimSpace(s)
	}
}

func (r *CreateRequest) Validate() error {
	if err := validation.Validate(r); err != nil || upstream.IDString(r.OfferID) == "" {
		return dErrors.New(dErrors.CodeValidation, "Activity name and Offer ID are required.")
	}
	return validation.CheckStringLength("name", r.Name, validation.MaxNameLength)
}

// OptionUpdate points one option of an activity at a different offer.
type OptionUpdate struct {
	OptionLocalID any `json:"optionLocalId"`
	OfferID       any `json:"offerId"`
}

// OptionsRequest is the body of PUT /api/activities/{id}/options.
type OptionsRequest struct {
	Options []OptionUpdate `json:"options" validate:"required,min=1"`
}

func (r *OptionsRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, "options array is required (e.g. [{ optionLocalId: 0, offerId: 123 }, ...]).")
	}
	return validation.CheckSliceCount("options", len(r.Options), validation.MaxOptionUpdates)
}

// RemoveRequest is the body of POST /api/activities/remove-from-mine.
type RemoveRequest struct {
	ActivityID any `json:"activityId"`
}

func (r *RemoveRequest) Validate() error {
	if upstream.IDString(r.ActivityID) == "" {
		return dErrors.New(dErrors.CodeValidation, "activityId is required.")
	}
	return nil
}

// StateRequest is the body of PUT /api/activities/state.
type StateRequest struct {
	ActivityID any    `json:"activityId"`
	State      string `json:"state" validate:"oneof=saved archived approved live"`
}

func (r *StateRequest) Normalize() {
	r.State = strings.TrimSpace(r.State)
}

func (r *StateRequest) Validate() error {
	if upstream.IDString(r.ActivityID) == "" || r.State == "" {
		return dErrors.New(dErrors.CodeValidation, "Activity ID and state are required.")
	}
	if err := validation.Validate(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid state. Use: saved, archived, approved, or live")
	}
	return nil
}

type ListResponse struct {
	Activities []upstream.Item `json:"activities"`
}

type CreateResponse struct {
	ActivityID string        `json:"activityId"`
	Activity   upstream.Item `json:"activity"`
}

// ActionResponse acknowledges delete and remove-from-mine.
type ActionResponse struct {
	Success    bool   `json:"success"`
	ActivityID string `json:"activityId"`
}

type StateResponse struct {
	Success    bool          `json:"success"`
	ActivityID string        `json:"activityId"`
	State      string        `json:"state"`
	Data       upstream.Item `json:"data"`
}
