package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/validation"
)

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr string
	}{
		{name: "valid", req: CreateRequest{Name: "Hero", Content: "<p>hi</p>"}},
		{name: "blank name", req: CreateRequest{Name: "  ", Content: "<p>hi</p>"}, wantErr: "Offer name and content are required."},
		{name: "missing content", req: CreateRequest{Name: "Hero"}, wantErr: "Offer name and content are required."},
		{
			name:    "name too long",
			req:     CreateRequest{Name: strings.Repeat("n", validation.MaxNameLength+1), Content: "x"},
			wantErr: "name exceeds max length",
		},
		{
			name:    "content too long",
			req:     CreateRequest{Name: "Hero", Content: strings.Repeat("x", validation.MaxOfferContentLength+1)},
			wantErr: "content exceeds max length",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
