package cycletime

import "errors"

var (
	// ErrNoInputFiles means a batch was started without any input. Fatal.
	ErrNoInputFiles = errors.New("no input files found")
	// ErrNoCycles means the log held no cycle-start events. Skippable.
	ErrNoCycles = errors.New("no cycle data found")
	// ErrNoFrameData means nothing with a frame identifier survived filtering. Skippable.
	ErrNoFrameData = errors.New("no usable frame data")
	// ErrNoUsableFiles means every file of a batch was skipped. Fatal.
	ErrNoUsableFiles = errors.New("no file in the batch produced frame data")
)
