package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"logview/internal/operations"
	"logview/internal/services"
)

// MockRunService is a mock implementation of RunServiceInterface
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Functions() []operations.Info {
	args := m.Called()
	return args.Get(0).([]operations.Info)
}

func (m *MockRunService) Function(id string) (operations.Info, error) {
	args := m.Called(id)
	return args.Get(0).(operations.Info), args.Error(1)
}

func (m *MockRunService) Run(ctx context.Context, req services.RunRequest) (*services.RunOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RunOutcome), args.Error(1)
}

func (m *MockRunService) LatestPreview(ctx context.Context, functionID string) (*services.Preview, error) {
	args := m.Called(ctx, functionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Preview), args.Error(1)
}

func (m *MockRunService) ResolveDownload(functionID, name string) (string, error) {
	args := m.Called(functionID, name)
	return args.String(0), args.Error(1)
}

var logviewInfo = operations.Info{ID: "logview", Name: "LOGVIEW cycle time", Description: "per-frame cycle time"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// multipartBody builds a run form. files maps upload names to contents.
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, body := range files {
		fw, err := mw.CreateFormFile(FilesField, name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newMultipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req, err := http.NewRequest(http.MethodPost, target, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	return req
}

// uploadNames matches a RunRequest by its upload names, in any order.
func uploadNames(names ...string) interface{} {
	return mock.MatchedBy(func(req services.RunRequest) bool {
		if len(req.Files) != len(names) {
			return false
		}
		want := map[string]bool{}
		for _, n := range names {
			want[n] = true
		}
		for _, f := range req.Files {
			if !want[f.Name] {
				return false
			}
		}
		return true
	})
}

func sampleOutcome() *services.RunOutcome {
	return &services.RunOutcome{
		Result: &operations.Result{
			FunctionID: "logview",
			RunID:      "run-1",
			Outputs:    []string{"/out/output_logview/a_20240301_120000.xlsx", "/out/output_logview/Summary_20240301_120000.csv"},
			Skipped:    []operations.SkippedFile{{Path: "/scratch/run-1/notes.csv", Reason: "not a log file"}},
			Message:    "1 of 2 log files processed",
		},
		Output: "/out/output_logview/Summary_20240301_120000.csv",
		Preview: &services.Preview{
			File:      "Summary_20240301_120000.csv",
			Columns:   []string{"FRAME_STOCK", "SPEED (IPS)"},
			Rows:      [][]string{{"FRAB12", "5"}, {"FRAC07", "3"}},
			TotalRows: 2,
		},
	}
}
