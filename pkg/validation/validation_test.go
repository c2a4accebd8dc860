package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "targetkit/pkg/domain-errors"
)

type sample struct {
	Name    string   `json:"name" validate:"notblank"`
	OfferID any      `json:"offerId" validate:"required"`
	Options []string `json:"options" validate:"omitempty,min=2"`
	State   string   `json:"state" validate:"omitempty,oneof=saved live"`
}

func TestValidateMessagesUseJSONNames(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{name: "blank", in: sample{Name: "  ", OfferID: 1}, want: "name must not be blank"},
		{name: "required", in: sample{Name: "n"}, want: "offerId is required"},
		{name: "slice min", in: sample{Name: "n", OfferID: 1, Options: []string{"a"}}, want: "options must contain at least 2 item(s)"},
		{name: "oneof", in: sample{Name: "n", OfferID: 1, State: "paused"}, want: "state must be one of [saved live]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, Validate(&sample{Name: "n", OfferID: "1", State: "live"}))
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(errors.New("boom")))
}
