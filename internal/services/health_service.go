package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"logview/internal/config"
	"logview/internal/operations"
	"logview/internal/validation"
)

// Health states reported by ReadinessCheck.
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	registry  *operations.Registry
	validator *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, registry *operations.Registry, validator *validation.FileValidator, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		registry:  registry,
		validator: validator,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	hs.logger.DebugContext(ctx, "health check",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))
	return status
}

// ReadinessCheck verifies the directories the web tool writes to and the
// package reference. Unwritable directories make the service not ready; a
// missing reference only degrades it, since only logview needs it.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"output":          hs.checkDirectory(hs.paths.OutputDir),
			"scratch":         hs.checkDirectory(hs.paths.ScratchDir),
			"reference":       hs.checkReference(),
			"transformations": hs.checkRegistry(),
		},
	}

	for name, svc := range status.Services {
		if svc.Status == StatusReady {
			continue
		}
		if name == "reference" {
			if status.Status == StatusReady {
				status.Status = StatusDegraded
			}
			continue
		}
		status.Status = StatusNotReady
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "readiness check",
			slog.String("status", status.Status),
			slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDirectory(dir string) ServiceHealth {
	if err := hs.validator.ValidateOutputDirectory(dir); err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkReference() ServiceHealth {
	if err := hs.validator.ValidateSpreadsheet(hs.paths.ReferenceFile); err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkRegistry() ServiceHealth {
	if hs.registry == nil || hs.registry.Count() == 0 {
		return ServiceHealth{Status: StatusNotReady, Message: "no transformations registered"}
	}
	return ServiceHealth{Status: StatusReady}
}
