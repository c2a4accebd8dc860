package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "targetkit/pkg/domain-errors"
	"targetkit/pkg/validation"
)

func TestCreateRequestValidate(t *testing.T) {
	t.Run("numeric offer id is accepted", func(t *testing.T) {
		req := CreateRequest{Name: " Spring ", OfferID: float64(123)}
		req.Normalize()
		assert.NoError(t, req.Validate())
		assert.Equal(t, "Spring", req.Name)
	})

	t.Run("blank offer id is rejected", func(t *testing.T) {
		req := CreateRequest{Name: "Spring", OfferID: "  "}
		req.Normalize()
		assert.EqualError(t, req.Validate(), "Activity name and Offer ID are required.")
	})

	t.Run("long name is rejected", func(t *testing.T) {
		req := CreateRequest{Name: strings.Repeat("a", validation.MaxNameLength+1), OfferID: "1"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestOptionsRequestValidate(t *testing.T) {
	assert.Error(t, (&OptionsRequest{}).Validate())
	assert.NoError(t, (&OptionsRequest{Options: []OptionUpdate{{OptionLocalID: 0, OfferID: 1}}}).Validate())

	tooMany := make([]OptionUpdate, validation.MaxOptionUpdates+1)
	err := (&OptionsRequest{Options: tooMany}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many options")
}

func TestStateRequestValidate(t *testing.T) {
	req := StateRequest{ActivityID: 7, State: " live "}
	req.Normalize()
	assert.NoError(t, req.Validate())

	req = StateRequest{ActivityID: 7, State: "paused"}
	assert.EqualError(t, req.Validate(), "Invalid state. Use: saved, archived, approved, or live")

	req = StateRequest{State: "live"}
	assert.EqualError(t, req.Validate(), "Activity ID and state are required.")
}
