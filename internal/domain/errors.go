package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeCorruptSnapshot   = "CORRUPT_SNAPSHOT"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidOperation  = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "search query cannot be empty")
	ErrOversizeUpload       = NewDomainError(ErrCodeValidation, "uploaded file exceeds size limit")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "chunk not found")
)

// Index errors
var (
	// ErrUnsupportedFormat is returned at upload when no parser claims the
	// file extension.
	ErrUnsupportedFormat = NewDomainError(ErrCodeUnsupportedFormat, "no parser supports this file type")

	// ErrDimensionMismatch is returned when a vector's length disagrees with
	// the index dimension. The add fails as a whole; existing index state is
	// never touched.
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "vector dimension does not match index")

	// ErrCountDivergence signals index/metadata corruption discovered on
	// load. Loading is refused and the prior state kept.
	ErrCountDivergence = NewDomainError(ErrCodeCorruptSnapshot, "vector and metadata counts diverge")

	ErrLengthMismatch = NewDomainError(ErrCodeValidation, "vectors and metadata records must have equal length")
)
