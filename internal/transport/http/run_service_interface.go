package http

import (
	"context"

	"logview/internal/operations"
	"logview/internal/services"
)

// RunServiceInterface is the part of services.RunService the handlers use.
type RunServiceInterface interface {
	Functions() []operations.Info
	Function(id string) (operations.Info, error)
	Run(ctx context.Context, req services.RunRequest) (*services.RunOutcome, error)
	LatestPreview(ctx context.Context, functionID string) (*services.Preview, error)
	ResolveDownload(functionID, name string) (string, error)
}
