package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "targetkit/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offerRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (r *offerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *offerRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r *idRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"Hero","content":"<b>x</b>"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[offerRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Hero", result.Name)
		assert.Equal(t, "<b>x</b>", result.Content)
	})

	t.Run("invalid JSON returns bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid json}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[offerRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "bad_request", errResp.Code)
		assert.Equal(t, "invalid request body", errResp.Error)
	})

	t.Run("empty body decodes to zero value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[offerRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		assert.Equal(t, &offerRequest{}, result)
	})

	t.Run("oversized body is 413", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 16)

		_, ok := DecodeJSON[offerRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "request body too large")
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"  Hero  "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[offerRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Hero", result.Name)
	})

	t.Run("plain validation error becomes validation_failed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"   "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[offerRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "validation_failed", errResp.Code)
		assert.Contains(t, errResp.Error, "name is required")
	})

	t.Run("empty body reaches validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[offerRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Contains(t, w.Body.String(), "name is required")
	})

	t.Run("preserves domain error code from Validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[idRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "bad_request", errResp.Code)
	})
}

func TestWriteError(t *testing.T) {
	t.Run("explicit status wins over code mapping", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.WithStatus(dErrors.CodeNotFound, http.StatusForbidden, "Offer not found in any workspace.", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, "Offer not found in any workspace.", errResp.Error)
		assert.Equal(t, "not_found", errResp.Code)
	})

	t.Run("details are echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, &dErrors.Error{Code: dErrors.CodeBadRequest, Message: "bad", Details: map[string]any{"field": "name"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"details":{"field":"name"}`)
	})

	t.Run("unknown errors become 500 without leaking text", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})

	t.Run("maps upstream classes", func(t *testing.T) {
		assert.Equal(t, http.StatusTooManyRequests, DomainCodeToHTTPStatus(dErrors.CodeRateLimited))
		assert.Equal(t, http.StatusBadGateway, DomainCodeToHTTPStatus(dErrors.CodeBadGateway))
		assert.Equal(t, http.StatusGatewayTimeout, DomainCodeToHTTPStatus(dErrors.CodeTimeout))
	})
}
