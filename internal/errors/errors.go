package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrTimeout    ErrorCode = "TIMEOUT"
	ErrRateLimit  ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Speaking-evaluation stage errors. Each maps 1:1 to a pipeline stage;
	// a failed evaluation surfaces exactly one of these.
	ErrAudioDecode          ErrorCode = "AUDIO_DECODE_ERROR"
	ErrUnsupportedDialect   ErrorCode = "UNSUPPORTED_DIALECT"
	ErrTranscription        ErrorCode = "TRANSCRIPTION_ERROR"
	ErrPronunciationScoring ErrorCode = "PRONUNCIATION_SCORING_ERROR"
	ErrSemanticEvaluation   ErrorCode = "SEMANTIC_EVALUATION_ERROR"
	ErrFeedbackGeneration   ErrorCode = "FEEDBACK_GENERATION_ERROR"
	ErrSpeechSynthesis      ErrorCode = "SPEECH_SYNTHESIS_ERROR"
	ErrExplainGeneration    ErrorCode = "EXPLAIN_GENERATION_ERROR"
)

// AppError represents an application error with code and metadata.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithStage records the pipeline stage that produced the error.
func (e *AppError) WithStage(stage string) *AppError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details["stage"] = stage
	return e
}

// HTTPStatus returns the HTTP status code for the error.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation, ErrUnsupportedDialect, ErrAudioDecode:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func Internal(message string) *AppError {
	return New(ErrInternal, message)
}

func InternalWrap(message string, err error) *AppError {
	return Wrap(ErrInternal, message, err)
}

func Validation(message string) *AppError {
	return New(ErrValidation, message)
}

func NotFound(resource string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource))
}
