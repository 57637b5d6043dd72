package uph

import "errors"

var (
	// ErrMissingColumn means the sheet lacks the UPH, BOM or machine model column.
	ErrMissingColumn = errors.New("required column not found")
	// ErrNoRowsInRange means the date filter left nothing to clean.
	ErrNoRowsInRange = errors.New("no rows in the selected date range")
	// ErrInvalidDate means a range bound is not YYYY/MM/DD.
	ErrInvalidDate = errors.New("date must be YYYY/MM/DD")
)
