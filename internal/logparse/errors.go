package logparse

import "errors"

// Skippable parse outcomes. Callers treat both as "no data in this file".
var (
	ErrUnreadable = errors.New("log file is unreadable")
	ErrEmptyLog   = errors.New("log file has no valid rows")
)
