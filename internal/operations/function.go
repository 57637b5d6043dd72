package operations

import (
	"context"
	"time"
)

// Function is a named transformation the web tool and the CLI can run. Each
// implementation reads its inputs from Request and writes its files into
// Request.OutputDir.
type Function interface {
	// ID returns the stable identifier used in URLs and on the command line
	ID() string

	// Name returns a human-readable label
	Name() string

	// Description returns what the transformation produces
	Description() string

	// Run executes the transformation
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request carries the inputs of one run.
type Request struct {
	// RunID identifies the run in logs and spans.
	RunID string `json:"run_id,omitempty"`
	// Inputs are the uploaded or discovered files.
	Inputs []string `json:"inputs"`
	// OutputDir receives every file the run writes. It is created when missing.
	OutputDir string `json:"output_dir"`
	// From and To optionally bound date-filtered transformations (YYYY/MM/DD).
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Result describes what a run produced.
type Result struct {
	FunctionID string        `json:"function_id"`
	RunID      string        `json:"run_id,omitempty"`
	Outputs    []string      `json:"outputs"`
	Preview    string        `json:"preview,omitempty"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
	Steps      []*StepState  `json:"steps"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// SkippedFile is an input left out of a run, with the reason.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Info is the listing form of a Function.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Describe returns the listing form of fn.
func Describe(fn Function) Info {
	return Info{ID: fn.ID(), Name: fn.Name(), Description: fn.Description()}
}
