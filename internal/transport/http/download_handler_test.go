package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/operations"
	"logview/internal/services"
)

func TestDownloadHandler(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "Summary_20240301_120000.csv")
	require.NoError(t, os.WriteFile(summary, []byte("\ufeffFRAME_STOCK,SPEED (IPS)\nFRAB12,5.0\n"), 0o644))

	svc := &MockRunService{}
	svc.On("ResolveDownload", "logview", "Summary_20240301_120000.csv").Return(summary, nil)
	svc.On("ResolveDownload", "logview", "absent.csv").Return("", services.ErrOutputNotFound)
	svc.On("ResolveDownload", "nope", "absent.csv").Return("", operations.ErrFunctionNotFound)

	h := NewDownloadHandler(svc, nil, nil, quietLogger())
	r := chi.NewRouter()
	r.Get("/download/{id}/{filename}", h.Download)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"served", "/download/logview/Summary_20240301_120000.csv", http.StatusOK, ""},
		{"missing file", "/download/logview/absent.csv", http.StatusNotFound, "OUTPUT_NOT_FOUND"},
		{"unknown function", "/download/nope/absent.csv", http.StatusNotFound, "FUNCTION_NOT_FOUND"},
		{"parent reference", "/download/logview/..%5Cconfig.yaml", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad function id", "/download/Log..view/a.csv", http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeJSON(t, rec)["error_code"])
				return
			}
			assert.Equal(t, `attachment; filename=Summary_20240301_120000.csv`, rec.Header().Get("Content-Disposition"))
			assert.Contains(t, rec.Body.String(), "FRAB12,5.0")
		})
	}
}
