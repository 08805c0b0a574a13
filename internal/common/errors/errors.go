// Package errors provides standardized error handling for the career predictor
// core and its BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Form / submission errors
const (
	ErrCodeValidationFailed     ErrorCode = "CAREER_VALIDATION_FAILED"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeUnknownField         ErrorCode = "UNKNOWN_FIELD"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"

	ErrCodePredictionFailed  ErrorCode = "PREDICTION_FAILED"
	ErrCodePredictionTimeout ErrorCode = "PREDICTION_TIMEOUT"

	ErrCodeNothingToShare ErrorCode = "NOTHING_TO_SHARE"
	ErrCodeShareFailed    ErrorCode = "SHARE_FAILED"

	ErrCodeSessionLocked        ErrorCode = "SESSION_LOCKED"
	ErrCodeCatalogUnavailable   ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeExternalService      ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout              ErrorCode = "TIMEOUT"
	ErrCodeResourceNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinel values usable with errors.Is.
var (
	ErrValidationFailed     = &StandardError{Code: ErrCodeValidationFailed}
	ErrSubmissionInProgress = &StandardError{Code: ErrCodeSubmissionInProgress}
	ErrPredictionFailed     = &StandardError{Code: ErrCodePredictionFailed}
	ErrNothingToShare       = &StandardError{Code: ErrCodeNothingToShare}
	ErrShareFailed          = &StandardError{Code: ErrCodeShareFailed}
	ErrSessionLocked        = &StandardError{Code: ErrCodeSessionLocked}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationFailedError carries the per-field messages in Metadata["errors"].
func NewValidationFailedError(fieldErrors map[string]string) *StandardError {
	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	err := newError(ErrCodeValidationFailed, "Form validation failed",
		fmt.Sprintf("fields: %s", strings.Join(fields, ",")), false, nil)
	return err.WithMetadata("errors", fieldErrors)
}

// NewSubmissionInProgressError rejects a re-entrant submit or edit.
func NewSubmissionInProgressError(submissionID string) *StandardError {
	return newError(ErrCodeSubmissionInProgress, "A submission is already in progress",
		fmt.Sprintf("submissionId: %s", submissionID), false, nil)
}

// NewUnknownFieldError creates a non-retryable form field error.
func NewUnknownFieldError(field string) *StandardError {
	return newError(ErrCodeUnknownField, "Unknown form field",
		fmt.Sprintf("field: %s", field), false, nil)
}

// NewInvalidInputError creates a non-retryable payload error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewPredictionFailedError creates a retryable prediction error.
func NewPredictionFailedError(err error) *StandardError {
	return newError(ErrCodePredictionFailed, "Prediction failed", errDetails(err), true, err)
}

// NewPredictionTimeoutError creates a retryable prediction timeout error.
func NewPredictionTimeoutError(err error) *StandardError {
	return newError(ErrCodePredictionTimeout, "Prediction timed out", errDetails(err), true, err)
}

// NewNothingToShareError is returned when no prediction exists yet.
func NewNothingToShareError() *StandardError {
	return newError(ErrCodeNothingToShare, "No prediction to share", "", false, nil)
}

// NewShareFailedError creates a non-retryable share error.
func NewShareFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeShareFailed, "Share failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), false, err)
}

// NewSessionLockedError creates a retryable lock contention error.
func NewSessionLockedError(sessionID string) *StandardError {
	return newError(ErrCodeSessionLocked, "Session is locked by another submission",
		fmt.Sprintf("sessionId: %s", sessionID), true, nil)
}

// NewCatalogUnavailableError creates a retryable catalog error.
func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Career catalog unavailable", errDetails(err), true, err)
}

// NewExternalServiceError creates a retryable external service error.
func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, "External service error",
		fmt.Sprintf("service: %s, error: %s", service, errDetails(err)), true, err)
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeTimeout, "Operation timed out",
		fmt.Sprintf("operation: %s, error: %s", operation, errDetails(err)), true, err)
}

// NewResourceNotFoundError creates a non-retryable not found error.
func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, "Resource not found",
		fmt.Sprintf("resource: %s, %s", resource, details), false, nil)
}

// NewAuthenticationError creates a non-retryable authentication error.
func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "Authentication failed", details, false, nil)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// retryBudget is the recommended retry count per code; codes not listed are thrown.
var retryBudget = map[ErrorCode]int{
	ErrCodePredictionFailed:   3,
	ErrCodePredictionTimeout:  3,
	ErrCodeSessionLocked:      5,
	ErrCodeCatalogUnavailable: 3,
	ErrCodeExternalService:    3,
	ErrCodeTimeout:            2,
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	return retryBudget[code]
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard extracts a StandardError from err, wrapping unknown errors as internal.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeUnknownField, ErrCodeInvalidInput:
		return "validation"
	case ErrCodeSubmissionInProgress, ErrCodeSessionLocked:
		return "concurrency"
	case ErrCodePredictionFailed, ErrCodePredictionTimeout, ErrCodeCatalogUnavailable:
		return "prediction"
	case ErrCodeNothingToShare, ErrCodeShareFailed:
		return "share"
	case ErrCodeExternalService, ErrCodeTimeout:
		return "external"
	case ErrCodeAuthenticationFailed:
		return "auth"
	default:
		return "internal"
	}
}
