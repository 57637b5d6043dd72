package http

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	apierrors "logview/internal/errors"
	"logview/internal/middleware"
)

// downloadRequest is validated before the service sees the path.
type downloadRequest struct {
	FunctionID string `json:"id" validate:"required,funcid"`
	Filename   string `json:"filename" validate:"required,filename"`
}

// DownloadHandler serves files from the output directories.
type DownloadHandler struct {
	service      RunServiceInterface
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDownloadHandler creates a download handler.
func NewDownloadHandler(service RunServiceInterface, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DownloadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator(logger)
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DownloadHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "download")),
	}
}

// Download handles GET /download/{id}/{filename}
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	req := downloadRequest{
		FunctionID: chi.URLParam(r, "id"),
		Filename:   chi.URLParam(r, "filename"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	path, err := h.service.ResolveDownload(req.FunctionID, req.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else if filepath.Ext(name) == ".xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}

	h.logger.InfoContext(r.Context(), "output downloaded",
		slog.String("function_id", req.FunctionID),
		slog.String("file", name),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	http.ServeFile(w, r, path)
}
