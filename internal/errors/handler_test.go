package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/crossfile"
	"logview/internal/cycletime"
	"logview/internal/uph"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func decodeProblem(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	return got
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"api error", ErrFunctionNotFound, http.StatusNotFound, TypeFunctionNotFound},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"no input files", fmt.Errorf("discover: %w", cycletime.ErrNoInputFiles), http.StatusNotFound, TypeInputNotFound},
		{"invalid reference", crossfile.ErrReferenceInvalid, http.StatusUnprocessableEntity, TypeInputUnparsable},
		{"no rows in range", uph.ErrNoRowsInRange, http.StatusUnprocessableEntity, TypeNoData},
		{"bad date", uph.ErrInvalidDate, http.StatusBadRequest, TypeValidation},
		{"config", NewConfigError("bad", nil), http.StatusInternalServerError, TypeConfig},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newTestLogger()
			h := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/functions/logview/run", nil)
			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			got := decodeProblem(t, w.Body.Bytes())
			assert.Equal(t, tt.wantType, got["type"])
			assert.Equal(t, float64(tt.wantStatus), got["status"])
			assert.Equal(t, "/api/functions/logview/run", got["instance"])
			assert.Contains(t, got, "trace_id")
			assert.NotContains(t, got, "stack")
			assert.Contains(t, logs.String(), "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := newTestLogger()
	h := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	got := decodeProblem(t, w.Body.Bytes())
	assert.NotEmpty(t, got["stack"])
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	logger, _ := newTestLogger()
	h := NewErrorHandler(logger, false)
	err := NewProcessingError("uph", uph.ErrNoRowsInRange).WithContext("range", "20240101_to_20240131")

	p := h.ErrorToProblem(err, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Equal(t, "PROCESSING", p.Extensions["error_type"])
	assert.Equal(t, map[string]interface{}{"range": "20240101_to_20240131"}, p.Extensions["context"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w.Body.Bytes())["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/functions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w.Body.Bytes())["detail"], "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad", "", "").
		WithExtension("status", "ignored").
		WithExtension("field", "date_from")

	got := decodeProblem(t, mustMarshal(t, p))

	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.Equal(t, "date_from", got["field"])
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
