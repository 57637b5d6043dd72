package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apierrors "logview/internal/errors"
	"logview/internal/infrastructure"
	"logview/internal/middleware"
	"logview/internal/operations"
	"logview/internal/services"
)

// OutputLink is a produced file and where to download it.
type OutputLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RunResponse is the JSON form of a finished run.
type RunResponse struct {
	FunctionID string                   `json:"function_id"`
	RunID      string                   `json:"run_id,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Duration   string                   `json:"duration"`
	Outputs    []OutputLink             `json:"outputs"`
	Skipped    []operations.SkippedFile `json:"skipped,omitempty"`
	Steps      []*operations.StepState  `json:"steps,omitempty"`
	Preview    *services.Preview        `json:"preview,omitempty"`
}

// FunctionsHandler serves the JSON API over the registered transformations.
type FunctionsHandler struct {
	service      RunServiceInterface
	uploads      *uploadParser
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewFunctionsHandler creates a functions handler. maxRequestBytes bounds a
// whole run request; zero disables the bound.
func NewFunctionsHandler(service RunServiceInterface, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, maxRequestBytes int64, logger *slog.Logger) *FunctionsHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator(logger)
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &FunctionsHandler{
		service:      service,
		uploads:      &uploadParser{validator: validator, maxRequestBytes: maxRequestBytes},
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "functions")),
	}
}

// Routes returns a chi router for the function endpoints.
func (h *FunctionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListFunctions)
	r.Get("/{id}", h.GetFunction)
	r.With(middleware.ContentTypeValidator("multipart/form-data")).Post("/{id}/run", h.RunFunction)
	r.Get("/{id}/latest", h.LatestResult)
	return r
}

// ListFunctions handles GET /api/v1/functions
func (h *FunctionsHandler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"functions": h.service.Functions(),
	})
}

// GetFunction handles GET /api/v1/functions/{id}
func (h *FunctionsHandler) GetFunction(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Function(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, info)
}

// RunFunction handles POST /api/v1/functions/{id}/run with multipart uploads
// in the "files" field and optional "from"/"to" dates.
func (h *FunctionsHandler) RunFunction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := otel.Tracer("logview.http").Start(r.Context(), "functions_handler.run",
		trace.WithAttributes(
			attribute.String("function.id", id),
			attribute.String("request_id", middleware.GetReqID(r.Context())),
		),
	)
	defer span.End()
	r = r.WithContext(ctx)

	req, release, err := h.uploads.parse(w, r, id)
	defer release()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid run request")
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	span.SetAttributes(attribute.Int("upload.files", len(req.Files)))

	outcome, err := h.service.Run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	h.logger.InfoContext(ctx, "function run completed",
		slog.String("function_id", id),
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("trace_id", infrastructure.TraceIDFromContext(ctx)))
	render.JSON(w, r, newRunResponse(outcome))
}

// LatestResult handles GET /api/v1/functions/{id}/latest and previews the
// newest output of the transformation.
func (h *FunctionsHandler) LatestResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	preview, err := h.service.LatestPreview(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"function_id": id,
		"download":    DownloadURL(id, preview.File),
		"preview":     preview,
	})
}

func newRunResponse(outcome *services.RunOutcome) RunResponse {
	resp := RunResponse{Preview: outcome.Preview, Outputs: []OutputLink{}}
	res := outcome.Result
	if res == nil {
		return resp
	}
	resp.FunctionID = res.FunctionID
	resp.RunID = res.RunID
	resp.Message = res.Message
	resp.Duration = res.Duration.Round(time.Millisecond).String()
	resp.Steps = res.Steps
	resp.Outputs = outputLinks(res.FunctionID, res.Outputs)
	for _, s := range res.Skipped {
		resp.Skipped = append(resp.Skipped, operations.SkippedFile{Path: filepath.Base(s.Path), Reason: s.Reason})
	}
	return resp
}

func outputLinks(functionID string, outputs []string) []OutputLink {
	links := make([]OutputLink, 0, len(outputs))
	for _, out := range outputs {
		name := filepath.Base(out)
		links = append(links, OutputLink{Name: name, URL: DownloadURL(functionID, name)})
	}
	return links
}

// DownloadURL is the download route of an output file.
func DownloadURL(functionID, name string) string {
	return "/download/" + url.PathEscape(functionID) + "/" + url.PathEscape(name)
}
