package operations

import (
	"time"
)

// StepStatus is the lifecycle state of one step of a run.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState records how one step of a run went.
type StepState struct {
	ID        string        `json:"id"`
	Status    StepStatus    `json:"status"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Items     int           `json:"items"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// NewStepState creates a pending step.
func NewStepState(id string) *StepState {
	return &StepState{ID: id, Status: StepStatusPending}
}

// Start marks the step as running
func (s *StepState) Start() {
	s.Status = StepStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the step as completed with the number of items it handled.
func (s *StepState) Complete(items int, message string) {
	s.Status = StepStatusCompleted
	s.Items = items
	s.Message = message
	s.Duration = time.Since(s.StartTime)
}

// Fail marks the step as failed
func (s *StepState) Fail(err error) {
	s.Status = StepStatusFailed
	s.Duration = time.Since(s.StartTime)
	if err != nil {
		s.Error = err.Error()
	}
}

// Skip marks a step that did not need to run.
func (s *StepState) Skip(reason string) {
	s.Status = StepStatusSkipped
	s.Message = reason
}

// IsTerminal reports whether the step has finished one way or another.
func (s *StepState) IsTerminal() bool {
	switch s.Status {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	}
	return false
}
