package crossfile

import "errors"

var (
	// ErrMissingSheet means a workbook has neither the detail sheet nor Sheet1. Skippable.
	ErrMissingSheet = errors.New("workbook has no processed data sheet")
	// ErrMissingColumns means a workbook lacks frame, speed or sec/strip. Skippable.
	ErrMissingColumns = errors.New("workbook is missing required columns")
	// ErrReferenceMissing means the package reference workbook does not exist. Fatal.
	ErrReferenceMissing = errors.New("package reference file not found")
	// ErrReferenceInvalid means the reference workbook has no FRAME_STOCK column. Fatal.
	ErrReferenceInvalid = errors.New("package reference file is invalid")
)
