// Package services implements the use cases behind the HTTP handlers: running
// a transformation over uploaded files, previewing and serving its outputs,
// and reporting health.
package services
