package errors

import (
	"fmt"
	"net/http"
)

// Kind classifies extraction errors. Every per-file failure is recorded
// under exactly one of these kinds so the calling layer can build a
// per-file failure list without parsing message strings.
type Kind string

const (
	// KindDecode marks an unreadable or corrupt volume container.
	KindDecode Kind = "decode"
	// KindEmptyForeground marks a volume with no foreground voxels left
	// after NaN/Inf filtering.
	KindEmptyForeground Kind = "empty_foreground"
	// KindDegenerateRange marks a volume whose intensity range is zero,
	// making the 8-bit quantization undefined.
	KindDegenerateRange Kind = "degenerate_range"
	// KindComputation marks a numerical failure inside a single engine.
	KindComputation Kind = "computation"
	KindValidation  Kind = "validation"
	KindInternal    Kind = "internal"
)

// AppError is a structured extraction error with a kind and an optional cause.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates an error for an unreadable volume container
func NewDecodeError(message string, cause error) *AppError {
	return &AppError{Kind: KindDecode, Message: message, Cause: cause}
}

// NewEmptyForegroundError creates an error for a volume without foreground voxels
func NewEmptyForegroundError(message string) *AppError {
	return &AppError{Kind: KindEmptyForeground, Message: message}
}

// NewDegenerateRangeError creates an error for a zero intensity range
func NewDegenerateRangeError(message string) *AppError {
	return &AppError{Kind: KindDegenerateRange, Message: message}
}

// NewComputationError creates an error for a numerical failure inside an engine
func NewComputationError(message string, cause error) *AppError {
	return &AppError{Kind: KindComputation, Message: message, Cause: cause}
}

// NewValidationError creates an error for an invalid request
func NewValidationError(message string, cause error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Cause: cause}
}

// NewInternalError creates an error for an unexpected internal failure
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// IsKind checks if the error is of a specific kind
func IsKind(err error, kind Kind) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind == kind
	}
	return false
}

// GetStatusCode maps an error to the HTTP status the transport layer
// should answer with. Per-file extraction errors never reach this path;
// they travel inside the batch result body.
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		switch appErr.Kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindDecode, KindEmptyForeground, KindDegenerateRange, KindComputation:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
