package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "targetkit/pkg/domain-errors"
)

func TestBestMessage(t *testing.T) {
	const fallback = "Offer not found in any workspace."

	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"message":"m","error":"e","errors":[{"message":"x"}]}`, "m"},
		{"error second", `{"error":"e","errors":[{"message":"x"}]}`, "e"},
		{"errors[0].message third", `{"errors":[{"message":"x"},{"message":"y"}]}`, "x"},
		{"empty message falls through", `{"message":"","error":"e"}`, "e"},
		{"non-string message ignored", `{"message":42}`, fallback},
		{"json object without fields", `{"status":404}`, fallback},
		{"json array", `[1,2]`, fallback},
		{"raw text", `Not Found`, "Not Found"},
		{"empty body", ``, fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestMessage([]byte(tt.body), fallback))
		})
	}

	t.Run("raw text is cut at 200 characters", func(t *testing.T) {
		body := "<html>" + strings.Repeat("é", 300)
		got := BestMessage([]byte(body), fallback)
		assert.Equal(t, 200, len([]rune(got)))
		assert.True(t, strings.HasPrefix(got, "<html>"))
	})
}

func TestCategoryForStatus(t *testing.T) {
	assert.Equal(t, CategoryNotFound, CategoryForStatus(http.StatusNotFound))
	assert.Equal(t, CategoryForbidden, CategoryForStatus(http.StatusForbidden))
	assert.Equal(t, CategoryUnauthorized, CategoryForStatus(http.StatusUnauthorized))
	assert.Equal(t, CategoryRateLimited, CategoryForStatus(http.StatusTooManyRequests))
	assert.Equal(t, CategoryTimeout, CategoryForStatus(http.StatusGatewayTimeout))
	assert.Equal(t, CategoryUnavailable, CategoryForStatus(http.StatusBadGateway))
	assert.Equal(t, CategoryRejected, CategoryForStatus(http.StatusUnprocessableEntity))
}

func TestIsLookupMiss(t *testing.T) {
	assert.True(t, IsLookupMiss(&Error{Category: CategoryNotFound}))
	assert.True(t, IsLookupMiss(fmt.Errorf("wrapped: %w", &Error{Category: CategoryForbidden})))
	assert.False(t, IsLookupMiss(&Error{Category: CategoryUnauthorized}))
	assert.False(t, IsLookupMiss(errors.New("plain")))
	assert.False(t, IsLookupMiss(&Error{Category: CategoryForbidden, Operation: OpToken, Status: http.StatusForbidden}))
	assert.False(t, IsLookupMiss(&Error{Category: CategoryNotFound, Operation: OpToken, Status: http.StatusNotFound}))
}

func TestToDomain(t *testing.T) {
	t.Run("mirrors upstream status and echoes body", func(t *testing.T) {
		err := ToDomain(&Error{
			Category: CategoryRejected, Operation: OpCreateOffer, Status: http.StatusUnprocessableEntity,
			Message: "name taken", Body: []byte(`{"message":"name taken"}`),
		})

		var derr *dErrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, dErrors.CodeBadRequest, derr.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, derr.Status)
		assert.Equal(t, "name taken", derr.Message)
		assert.Equal(t, map[string]any{"message": "name taken"}, derr.Details)
	})

	t.Run("transport failure has no status", func(t *testing.T) {
		err := ToDomain(&Error{Category: CategoryUnavailable, Message: "connection refused"})

		var derr *dErrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, dErrors.CodeUnavailable, derr.Code)
		assert.Zero(t, derr.Status)
		assert.Nil(t, derr.Details)
	})

	t.Run("foreign errors pass through", func(t *testing.T) {
		plain := errors.New("plain")
		assert.Same(t, plain, ToDomain(plain))
	})
}
