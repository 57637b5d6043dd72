package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "logview/internal/errors"
)

type runForm struct {
	FunctionID string `form:"function_id" validate:"required,funcid"`
	From       string `form:"from" validate:"ymd"`
	To         string `form:"to" validate:"ymd"`
}

type downloadParams struct {
	File string `json:"file" validate:"required,filename"`
}

func TestRequestValidator_ValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{name: "valid run", input: runForm{FunctionID: "uph_wb", From: "2024/01/01", To: "2024/01/31"}},
		{name: "empty dates", input: runForm{FunctionID: "logview"}},
		{name: "missing function", input: runForm{}, wantFields: []string{"function_id"}},
		{name: "bad function id", input: runForm{FunctionID: "../x"}, wantFields: []string{"function_id"}},
		{name: "bad dates", input: runForm{FunctionID: "uph_wb", From: "2024-01-01", To: "2024/02/30"},
			wantFields: []string{"from", "to"}},
		{name: "valid file", input: downloadParams{File: "Summary_20240101_000000.csv"}},
		{name: "traversal", input: downloadParams{File: "../config.yaml"}, wantFields: []string{"file"}},
		{name: "nested path", input: downloadParams{File: `out\x.csv`}, wantFields: []string{"file"}},
	}

	v := NewRequestValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantCode    int
	}{
		{"multipart", http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{"form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"json rejected", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
		{"get passes", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ContentTypeValidator("multipart/form-data", "application/x-www-form-urlencoded")(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			r := httptest.NewRequest(tt.method, "/run", strings.NewReader("x"))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
