package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/shared/testutil"
)

func TestClientLogHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantLog    string
	}{
		{
			name:       "error report",
			body:       `{"level":"error","message":"table render failed","source":"/result/logview"}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelError,
			wantLog:    "table render failed",
		},
		{
			name:       "level defaults to info",
			body:       `{"message":"page loaded","data":{"rows":12}}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
			wantLog:    "page loaded",
		},
		{
			name:       "unknown level",
			body:       `{"level":"fatal","message":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing message",
			body:       `{"level":"warn"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       `{"level":`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewCaptureLogger()
			handler := NewClientLogHandler(nil, logger)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/client-logs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.Handle(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, true, resp["success"])
				entry := testutil.RequireLogged(t, logs, tt.wantLevel, tt.wantLog)
				assert.Equal(t, "client_log", entry.Attrs["handler"])
				return
			}
			assert.Equal(t, false, resp["success"])
			for _, r := range logs.Records() {
				assert.NotEqual(t, "client_log", r.Attrs["handler"], r.Message)
			}
		})
	}
}
