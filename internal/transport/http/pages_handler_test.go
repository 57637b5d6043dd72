package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"logview/internal/middleware"
	"logview/internal/operations"
	"logview/internal/services"
	"logview/internal/uph"
)

func setupPagesRouter(t *testing.T) (chi.Router, *MockRunService) {
	t.Helper()
	svc := &MockRunService{}
	h := NewPagesHandler(svc, nil, nil, 0, "1.2.0", quietLogger())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/", h.Index)
	r.Post("/run", h.Run)
	r.Get("/result/{id}", h.Latest)
	return r, svc
}

func TestPagesHandler_Index(t *testing.T) {
	r, svc := setupPagesRouter(t)
	svc.On("Functions").Return([]operations.Info{
		logviewInfo,
		{ID: "wb_auto_uph", Name: "WB auto UPH", Description: "wire bond UPH cleaning"},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="wb_auto_uph">WB auto UPH</option>`)
	assert.Contains(t, body, `enctype="multipart/form-data"`)
	assert.Contains(t, body, `href="/result/logview"`)
	assert.Contains(t, body, "logview 1.2.0")
}

func TestPagesHandler_RunRendersResult(t *testing.T) {
	r, svc := setupPagesRouter(t)
	svc.On("Function", "logview").Return(logviewInfo, nil)
	svc.On("Run", mock.Anything, uploadNames("a.txt")).Return(sampleOutcome(), nil)

	req := newMultipartRequest(t, "/run", map[string]string{"function": "logview"}, map[string]string{"a.txt": "log"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>LOGVIEW cycle time</h2>")
	assert.Contains(t, body, "1 of 2 log files processed")
	assert.Contains(t, body, `<a href="/download/logview/Summary_20240301_120000.csv">Summary_20240301_120000.csv</a>`)
	assert.Contains(t, body, "<li>notes.csv: not a log file</li>")
	assert.Contains(t, body, "<th>#</th><th>FRAME_STOCK</th><th>SPEED (IPS)</th>")
	assert.Contains(t, body, "<tr><td>1</td><td>FRAB12</td><td>5</td></tr>")
	assert.Contains(t, body, "<tr><td>2</td><td>FRAC07</td><td>3</td></tr>")
	assert.Contains(t, body, "Processing finished")
}

func TestPagesHandler_RunFailures(t *testing.T) {
	partial := &services.RunOutcome{Result: &operations.Result{
		FunctionID: "logview",
		Outputs:    []string{"/out/output_logview/Summary_Comparison_20240301_120000.xlsx"},
	}}

	tests := []struct {
		name       string
		fields     map[string]string
		setup      func(svc *MockRunService)
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "missing function",
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`class="flash error"`, `<form method="post"`},
		},
		{
			name:   "invalid date range",
			fields: map[string]string{"function": "wb_auto_uph", "from": "2024/02/01", "to": "2024/01/01"},
			setup: func(svc *MockRunService) {
				svc.On("Run", mock.Anything, mock.Anything).
					Return(&services.RunOutcome{}, fmt.Errorf("range: %w", uph.ErrInvalidDate))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"Validation Failed", `value="2024/02/01"`},
		},
		{
			name:   "partial outputs stay downloadable",
			fields: map[string]string{"function": "logview"},
			setup: func(svc *MockRunService) {
				svc.On("Function", "logview").Return(logviewInfo, nil)
				svc.On("Run", mock.Anything, mock.Anything).Return(partial, errors.New("disk full"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{`/download/logview/Summary_Comparison_20240301_120000.xlsx`, `class="flash error"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupPagesRouter(t)
			svc.On("Functions").Return([]operations.Info{logviewInfo}).Maybe()
			if tt.setup != nil {
				tt.setup(svc)
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, newMultipartRequest(t, "/run", tt.fields, map[string]string{"a.xlsx": "x"}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestPagesHandler_Latest(t *testing.T) {
	r, svc := setupPagesRouter(t)
	svc.On("Function", "logview").Return(logviewInfo, nil)
	svc.On("LatestPreview", mock.Anything, "logview").Return(sampleOutcome().Preview, nil)
	svc.On("Function", "nope").Return(operations.Info{}, operations.ErrFunctionNotFound)
	svc.On("Functions").Return([]operations.Info{logviewInfo})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result/logview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h3>Summary_20240301_120000.csv</h3>")
	assert.Contains(t, rec.Body.String(), "2 rows")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Function not found")
}
