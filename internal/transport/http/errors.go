package http

import (
	"errors"
	"net/http"

	apierrors "logview/internal/errors"
	"logview/internal/files"
	"logview/internal/operations"
	"logview/internal/services"
	"logview/internal/validation"
)

// toAPIError maps service errors with a fixed HTTP meaning onto APIErrors.
// Anything else is returned unchanged for the error handler to classify.
func toAPIError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, operations.ErrFunctionNotFound):
		return apierrors.ErrFunctionNotFound
	case errors.Is(err, services.ErrNoFilesUploaded):
		return apierrors.ErrNoFilesUploaded
	case errors.Is(err, services.ErrOutputNotFound), errors.Is(err, services.ErrNoOutput):
		return apierrors.ErrOutputNotFound
	case errors.Is(err, validation.ErrUploadTooLarge),
		errors.Is(err, files.ErrFileTooLarge),
		errors.As(err, &maxBytes):
		return apierrors.NewWithDetails(apierrors.ErrPayloadTooLarge.StatusCode, apierrors.ErrPayloadTooLarge.ErrorCode,
			apierrors.ErrPayloadTooLarge.Message, err.Error())
	case errors.Is(err, validation.ErrUnsupportedExtension),
		errors.Is(err, validation.ErrTemporaryFile),
		errors.Is(err, validation.ErrDuplicateUpload):
		return apierrors.NewValidationError(err.Error())
	}
	return err
}
