package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "logview/internal/errors"
	"logview/internal/middleware"
)

// ClientLogHandler records errors reported by the browser pages.
type ClientLogHandler struct {
	validator *middleware.RequestValidator
	logger    *slog.Logger
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validator *middleware.RequestValidator, logger *slog.Logger) *ClientLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator(logger)
	}
	return &ClientLogHandler{
		validator: validator,
		logger:    logger.With(slog.String("handler", "client_log")),
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"max=512"`
}

// Bind implements render.Binder.
func (l *LogRequest) Bind(r *http.Request) error {
	if l.Level == "" {
		l.Level = "info"
	}
	return nil
}

var clientLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Handle handles POST /api/v1/client-logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := render.Bind(r, &req); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		apiErr, _ := err.(*apierrors.APIError)
		if apiErr == nil {
			apiErr = apierrors.InvalidRequestWithError(err)
		}
		apierrors.WriteError(w, apiErr)
		return
	}

	attrs := []slog.Attr{
		slog.String("client_source", req.Source),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_agent", r.UserAgent()),
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}
	h.logger.LogAttrs(r.Context(), clientLogLevels[req.Level], req.Message, attrs...)

	render.JSON(w, r, map[string]interface{}{
		"success": true,
	})
}
