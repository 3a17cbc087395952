package common

import (
	"errors"
	"fmt"
)

// Error codes for analysis failures
const (
	ErrCodeDimensionMismatch    = "DIMENSION_MISMATCH"
	ErrCodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeEmptySignal          = "EMPTY_SIGNAL"
)

// Sentinels for errors.Is matching. Any AnalysisError with the same code matches.
var (
	ErrDimensionMismatch    = &AnalysisError{Code: ErrCodeDimensionMismatch, Message: "dimension mismatch"}
	ErrUnsupportedFormat    = &AnalysisError{Code: ErrCodeUnsupportedFormat, Message: "unsupported format"}
	ErrInvalidConfiguration = &AnalysisError{Code: ErrCodeInvalidConfiguration, Message: "invalid configuration"}
	ErrEmptySignal          = &AnalysisError{Code: ErrCodeEmptySignal, Message: "empty signal"}
)

// AnalysisError represents a failed transform, comparison or decode
type AnalysisError struct {
	Code    string `json:"code"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AnalysisError with the same code.
func (e *AnalysisError) Is(target error) bool {
	var other *AnalysisError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewAnalysisError creates a new analysis error
func NewAnalysisError(code, op, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// DimensionMismatch reports two signals that cannot be compared sample for sample.
func DimensionMismatch(op, format string, args ...any) error {
	return NewAnalysisError(ErrCodeDimensionMismatch, op, fmt.Sprintf(format, args...), nil)
}

// UnsupportedFormat reports audio data the decoder cannot handle.
func UnsupportedFormat(op, format string, args ...any) error {
	return NewAnalysisError(ErrCodeUnsupportedFormat, op, fmt.Sprintf(format, args...), nil)
}

// InvalidConfiguration reports parameters that cannot produce a valid result.
func InvalidConfiguration(op, format string, args ...any) error {
	return NewAnalysisError(ErrCodeInvalidConfiguration, op, fmt.Sprintf(format, args...), nil)
}

// EmptySignal reports an operation attempted on a signal with no samples.
func EmptySignal(op string) error {
	return NewAnalysisError(ErrCodeEmptySignal, op, "empty signal", nil)
}
