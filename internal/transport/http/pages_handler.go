package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	apierrors "logview/internal/errors"
	"logview/internal/middleware"
	"logview/internal/operations"
	"logview/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTitle heads every page.
const pageTitle = "Production log tools"

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.html"))

// Flash is a one-off message shown at the top of a page.
type Flash struct {
	Level   string
	Message string
}

type indexPage struct {
	Title     string
	Version   string
	Flashes   []Flash
	Functions []operations.Info
	Selected  string
	From      string
	To        string
}

type resultPage struct {
	Title    string
	Version  string
	Flashes  []Flash
	Function operations.Info
	Message  string
	Outputs  []OutputLink
	Skipped  []operations.SkippedFile
	Preview  *services.Preview
}

// PagesHandler serves the HTML front end: the upload form and the result
// page.
type PagesHandler struct {
	service      RunServiceInterface
	uploads      *uploadParser
	errorHandler *apierrors.ErrorHandler
	version      string
	logger       *slog.Logger
}

// NewPagesHandler creates the HTML handler.
func NewPagesHandler(service RunServiceInterface, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, maxRequestBytes int64, version string, logger *slog.Logger) *PagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator(logger)
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &PagesHandler{
		service:      service,
		uploads:      &uploadParser{validator: validator, maxRequestBytes: maxRequestBytes},
		errorHandler: errorHandler,
		version:      version,
		logger:       logger.With(slog.String("handler", "pages")),
	}
}

// Index handles GET /
func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", h.indexPage(r, nil))
}

// Run handles POST /run: it runs the selected transformation over the
// uploaded files and renders the result page.
func (h *PagesHandler) Run(w http.ResponseWriter, r *http.Request) {
	req, release, err := h.uploads.parse(w, r, "")
	defer release()
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	outcome, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, outcome)
		return
	}

	page := h.resultPage(req.FunctionID, outcome)
	page.Flashes = append(page.Flashes, Flash{Level: "success", Message: "Processing finished"})
	if outcome.Preview == nil {
		page.Flashes = append(page.Flashes, Flash{Level: "warning", Message: "No table to show; use the download links"})
	}
	h.render(w, r, http.StatusOK, "result", page)
}

// Latest handles GET /result/{id} and shows the newest output of a
// transformation.
func (h *PagesHandler) Latest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := h.service.Function(id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	preview, err := h.service.LatestPreview(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.render(w, r, http.StatusOK, "result", resultPage{
		Title:    pageTitle,
		Version:  h.version,
		Function: info,
		Outputs:  []OutputLink{{Name: preview.File, URL: DownloadURL(id, preview.File)}},
		Preview:  preview,
	})
}

// fail renders err on the index page, or on the result page when the run
// still produced files.
func (h *PagesHandler) fail(w http.ResponseWriter, r *http.Request, err error, outcome *services.RunOutcome) {
	problem := h.errorHandler.ErrorToProblem(toAPIError(err), r)
	h.logger.WarnContext(r.Context(), "page request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	flash := Flash{Level: "error", Message: problem.Title + ": " + problem.Detail}
	if outcome != nil && outcome.Result != nil && len(outcome.Result.Outputs) > 0 {
		page := h.resultPage(outcome.Result.FunctionID, outcome)
		page.Flashes = append(page.Flashes, flash)
		h.render(w, r, problem.Status, "result", page)
		return
	}
	h.render(w, r, problem.Status, "index", h.indexPage(r, []Flash{flash}))
}

func (h *PagesHandler) indexPage(r *http.Request, flashes []Flash) indexPage {
	return indexPage{
		Title:     pageTitle,
		Version:   h.version,
		Flashes:   flashes,
		Functions: h.service.Functions(),
		Selected:  r.FormValue("function"),
		From:      r.FormValue("from"),
		To:        r.FormValue("to"),
	}
}

func (h *PagesHandler) resultPage(functionID string, outcome *services.RunOutcome) resultPage {
	page := resultPage{Title: pageTitle, Version: h.version, Preview: outcome.Preview}
	page.Function, _ = h.service.Function(functionID)
	if res := outcome.Result; res != nil {
		page.Message = res.Message
		page.Outputs = outputLinks(functionID, res.Outputs)
		for _, s := range res.Skipped {
			page.Skipped = append(page.Skipped, operations.SkippedFile{Path: filepath.Base(s.Path), Reason: s.Reason})
		}
	}
	return page
}

func (h *PagesHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
