package emberrors

import "fmt"

// ValidationError reports a malformed or missing engine.Config field
// caught during engine.New, before any storage is touched.
type ValidationError struct {
	cause   error
	code    ErrorCode
	message string
	details map[string]any
}

// NewValidationError creates a new validation-specific error with the
// given cause, code, and message.
func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{cause: err, code: code, message: msg}
}

// Error renders the code, message, and any attached detail context.
func (ve *ValidationError) Error() string {
	s := fmt.Sprintf("%s: %s", ve.code, ve.message)
	if len(ve.details) > 0 {
		for _, k := range []string{"field", "rule", "issue"} {
			if v, ok := ve.details[k]; ok {
				s += fmt.Sprintf(" %s=%v", k, v)
			}
		}
	}
	if ve.cause != nil {
		s += ": " + ve.cause.Error()
	}
	return s
}

// Unwrap exposes the underlying cause, if any, for errors.Is/errors.As.
func (ve *ValidationError) Unwrap() error {
	return ve.cause
}

// Code returns the error's taxonomy code (spec §7).
func (ve *ValidationError) Code() ErrorCode {
	return ve.code
}

// WithDetail adds contextual information while preserving the
// ValidationError type.
func (ve *ValidationError) WithDetail(key string, value any) *ValidationError {
	if ve.details == nil {
		ve.details = make(map[string]any)
	}
	ve.details[key] = value
	return ve
}

// NewConfigurationValidationError creates an error for an engine.Config
// field that failed validation, naming the field and what about it was
// invalid.
func NewConfigurationValidationError(field string, issue string) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "configuration validation failed").
		WithDetail("field", field).
		WithDetail("rule", "configuration_integrity").
		WithDetail("issue", issue)
}
