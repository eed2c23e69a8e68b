package manager

import (
	"errors"
	"fmt"
	"net/http"
)

// unsupportedMediaTypeError rejects uploads whose declared type is not an accepted image type.
type unsupportedMediaTypeError struct{ contentType string }

func (e unsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("Invalid file type %q. Only PNG and JPEG images are accepted.", e.contentType)
}

func (unsupportedMediaTypeError) StatusCode() int { return http.StatusBadRequest }

// IsUnsupportedMediaType reports whether err rejects the upload's content type (return 400).
func IsUnsupportedMediaType(err error) bool {
	var e unsupportedMediaTypeError
	return errors.As(err, &e)
}

// modelNotFoundError is returned when a requested model id is not in the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

func (modelNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrModelNotFound returns an error for a model id absent from the registry.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// modelFileMissingError means the weights file is not on disk.
type modelFileMissingError struct{ path string }

func (e modelFileMissingError) Error() string { return "Model file not found at " + e.path }

func (modelFileMissingError) StatusCode() int { return http.StatusInternalServerError }

// IsModelFileMissing reports whether err was caused by absent model weights.
func IsModelFileMissing(err error) bool {
	var e modelFileMissingError
	return errors.As(err, &e)
}

// saveError wraps a failure persisting the upload.
type saveError struct{ err error }

func (e saveError) Error() string { return "Error saving uploaded file: " + e.err.Error() }
func (e saveError) Unwrap() error { return e.err }
func (saveError) StatusCode() int { return http.StatusInternalServerError }

// uploadTooLargeError is returned when the body exceeds the configured limit.
type uploadTooLargeError struct{ limit int64 }

func (e uploadTooLargeError) Error() string {
	return fmt.Sprintf("uploaded file exceeds the %d byte limit", e.limit)
}

func (uploadTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// IsUploadTooLarge reports whether err was caused by an oversized upload (return 413).
func IsUploadTooLarge(err error) bool {
	var e uploadTooLargeError
	return errors.As(err, &e)
}

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ waited string }

func (e tooBusyError) Error() string { return "too busy: waited " + e.waited + " for an upscaler slot" }

func (tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// upscaleError wraps a failure reported by the upscaler.
type upscaleError struct{ err error }

func (e upscaleError) Error() string { return "Error during image upscaling: " + e.err.Error() }
func (e upscaleError) Unwrap() error { return e.err }
func (upscaleError) StatusCode() int { return http.StatusInternalServerError }

// noOutputError is returned when the upscaler reported success but wrote nothing.
type noOutputError struct{}

func (noOutputError) Error() string   { return "Upscaling process did not produce an output file." }
func (noOutputError) StatusCode() int { return http.StatusInternalServerError }

// IsNoOutput reports whether the upscaler finished without producing a file.
func IsNoOutput(err error) bool {
	var e noOutputError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (e.g., the
// upscaler binary or remote service) so the HTTP layer can return 503.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }
func (dependencyUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// errManagerClosed is returned for work submitted after Close.
var errManagerClosed = dependencyUnavailableError{msg: "upscaler is shut down"}
