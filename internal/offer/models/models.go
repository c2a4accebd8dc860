package models

import (
	"strings"

	"targetkit/internal/upstream"
	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/validation"
)

// Offer is the reshaped content offer returned to callers.
type Offer struct {
	ID        any    `json:"id"`
	Name      string `json:"name"`
	Content   any    `json:"content"`
	Workspace any    `json:"workspace"`
}

func FromUpstream(o *upstream.Offer) Offer {
	return Offer{ID: o.ID, Name: o.Name, Content: o.Content, Workspace: o.Workspace}
}

// LookupResult is an offer together with the workspace it was found in.
type LookupResult struct {
	Offer            Offer  `json:"offer"`
	FoundInWorkspace string `json:"foundInWorkspace"`
}

// CreateRequest is the body of POST /api/offers/create.
type CreateRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Content     string `json:"content" validate:"notblank"`
	WorkspaceID string `json:"workspaceId"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Content = strings.TrimSpace(r.Content)
	r.WorkspaceID = strings.TrimSpace(r.WorkspaceID)
}

func (r *CreateRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, "Offer name and content are required.")
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	return validation.CheckStringLength("content", r.Content, validation.MaxOfferContentLength)
}

// CreateResponse echoes the upstream offer alongside its id.
type CreateResponse struct {
	OfferID string        `json:"offerId"`
	Offer   upstream.Item `json:"offer"`
}

// ListResponse wraps annotated offers.
type ListResponse struct {
	Offers []upstream.Item `json:"offers"`
}
