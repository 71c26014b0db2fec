// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// User-facing messages. Existing clients match on these strings exactly.
const (
	MsgInvalidPrompt      = "Invalid or empty prompt, please enter another"
	MsgInvalidQuery       = "Invalid or empty query, please select a query"
	MsgEmptyAIResponse    = "AI response was empty or invalid."
	MsgConnectionFailed   = "Connecting to ai service failed "
	msgFailedStatusFormat = "Ai service returned a failed status of: %d"

	MsgNoFileSelected = "No file selected for upload."
	MsgFileTooLarge   = "File exceeds the maximum upload size."
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidPrompt indicates the document text is empty or whitespace only.
	ErrInvalidPrompt = errors.New(MsgInvalidPrompt)

	// ErrInvalidQuery indicates the query intent is not a defined value.
	ErrInvalidQuery = errors.New(MsgInvalidQuery)

	// ErrEmptyAIResponse indicates the AI reply had no usable summary.
	ErrEmptyAIResponse = errors.New(MsgEmptyAIResponse)

	// ErrPromptNotRegistered indicates an intent has no prompt template.
	ErrPromptNotRegistered = errors.New("no prompt template registered for intent")

	// ErrEndpointNotMapped indicates an intent has no AI service endpoint.
	ErrEndpointNotMapped = errors.New("no AI service endpoint mapped for intent")

	// ErrCircuitOpen indicates the AI service breaker is rejecting calls.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFileNotFound indicates no file record exists for the given id.
	ErrFileNotFound = errors.New("file not found")

	// ErrEmptyFile indicates an upload without content.
	ErrEmptyFile = errors.New(MsgNoFileSelected)

	// ErrFileTooLarge indicates an upload above the configured size limit.
	ErrFileTooLarge = errors.New(MsgFileTooLarge)

	// ErrUnreadablePDF indicates the PDF library could not extract text.
	ErrUnreadablePDF = errors.New("unreadable PDF document")

	// ErrUserRequired indicates a request without a resolvable uploader.
	ErrUserRequired = errors.New("user identity is required")
)

// ErrorKind classifies AI pipeline failures.
type ErrorKind int

const (
	// KindValidation is a local, pre-network input failure. Never retried.
	KindValidation ErrorKind = iota + 1

	// KindConnection covers failures escaping the HTTP layer: network,
	// serialization, timeout, cancellation and an open breaker.
	KindConnection

	// KindStatus is a non-2xx reply. StatusCode carries the code.
	KindStatus

	// KindMalformedResponse is a 2xx body that is not the expected JSON.
	KindMalformedResponse

	// KindEmptyResponse is valid JSON without a usable summary.
	KindEmptyResponse

	// KindConfiguration is an intent with no template or endpoint.
	KindConfiguration
)

// String returns a short name for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindMalformedResponse:
		return "malformed_response"
	case KindEmptyResponse:
		return "empty_response"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// AIError wraps an AI pipeline error with additional context.
type AIError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op is the operation that failed.
	Op string

	// StatusCode is the HTTP status for KindStatus errors.
	StatusCode int

	// Err is the underlying error.
	Err error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AIError) Unwrap() error {
	return e.Err
}

// WrapError creates a new AIError with context.
func WrapError(kind ErrorKind, op string, err error, retryable bool) *AIError {
	return &AIError{
		Kind:      kind,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// StatusError creates a KindStatus error for the given HTTP status.
func StatusError(statusCode int) *AIError {
	return &AIError{
		Kind:       KindStatus,
		Op:         "ai_status",
		StatusCode: statusCode,
		Err:        fmt.Errorf("AI service returned status %d", statusCode),
		Retryable:  IsTransientStatus(statusCode),
	}
}

// IsTransientStatus reports whether an HTTP status is worth retrying:
// 408, 429 and every 5xx.
func IsTransientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ae *AIError
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}

// KindOf returns the kind of an AI pipeline error, or 0 for other errors.
func KindOf(err error) ErrorKind {
	var ae *AIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// UserMessage converts any AI pipeline error into the message shown to the
// user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AIError
	if !errors.As(err, &ae) {
		return MsgConnectionFailed + err.Error()
	}
	switch ae.Kind {
	case KindValidation:
		return ae.Err.Error()
	case KindStatus:
		return fmt.Sprintf(msgFailedStatusFormat, ae.StatusCode)
	case KindEmptyResponse:
		return MsgEmptyAIResponse
	default:
		return MsgConnectionFailed + ae.Err.Error()
	}
}

// UploadError is an upload failure after the file was accepted. Its message
// is shown to the user.
type UploadError struct {
	Err error
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return "Error uploading file: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *UploadError) Unwrap() error {
	return e.Err
}
