package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	apierrors "logview/internal/errors"
	"logview/internal/middleware"
	"logview/internal/services"
)

const (
	// maxFormMemory is how much of a multipart body is held in memory before
	// spilling to temporary files.
	maxFormMemory = 32 << 20

	// FilesField is the multipart field carrying the uploads.
	FilesField = "files"
)

// runForm holds the non-file fields of a run request.
type runForm struct {
	FunctionID string `form:"function" validate:"required,funcid"`
	From       string `form:"from" validate:"ymd"`
	To         string `form:"to" validate:"ymd"`
}

// uploadParser turns a multipart request into a services.RunRequest.
type uploadParser struct {
	validator       *middleware.RequestValidator
	maxRequestBytes int64
}

// parse reads the form. functionID overrides the form field when non-empty.
// The returned close func releases the opened uploads and the multipart
// temporary files; it is safe to call when parse fails.
func (p *uploadParser) parse(w http.ResponseWriter, r *http.Request, functionID string) (services.RunRequest, func(), error) {
	var opened []multipart.File
	release := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	if p.maxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, p.maxRequestBytes)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return services.RunRequest{}, release, err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return services.RunRequest{}, release, apierrors.ErrNoFilesUploaded
		}
		return services.RunRequest{}, release, apierrors.InvalidRequestWithError(err)
	}

	form := runForm{
		FunctionID: strings.TrimSpace(r.FormValue("function")),
		From:       strings.TrimSpace(r.FormValue("from")),
		To:         strings.TrimSpace(r.FormValue("to")),
	}
	if functionID != "" {
		form.FunctionID = functionID
	}
	if err := p.validator.ValidateStruct(form); err != nil {
		return services.RunRequest{}, release, err
	}

	req := services.RunRequest{FunctionID: form.FunctionID, From: form.From, To: form.To}
	for _, fh := range r.MultipartForm.File[FilesField] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return services.RunRequest{}, release, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		req.Files = append(req.Files, services.UploadedFile{
			Name:   fh.Filename,
			Size:   fh.Size,
			Reader: f,
		})
	}
	return req, release, nil
}
