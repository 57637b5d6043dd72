package services

import "errors"

// Run service errors
var (
	ErrNoFilesUploaded = errors.New("no files uploaded")
	ErrOutputNotFound  = errors.New("output file not found")
	ErrNoOutput        = errors.New("transformation produced no previewable output")
)
