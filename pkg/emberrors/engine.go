package emberrors

import (
	"fmt"
	"sort"
)

// EngineError is the structured error type for everything that can go
// wrong at or below engine.New: a get/put/delete against a bad key, a
// corrupt on-disk record, or a segment/directory I/O failure. It carries
// whatever context applies — which key, which segment, which operation,
// plus a free-form detail bag for the rest (path, file name, type tag) —
// so a caller can branch on Code() or just log Error() and move on.
type EngineError struct {
	cause   error
	code    ErrorCode
	message string
	details map[string]any

	// key identifies which key was being processed when the error
	// occurred. Empty when the error has no single key, e.g. a segment
	// directory I/O failure.
	key string

	// segmentID identifies which segment was involved, if any. Zero means
	// none was recorded.
	segmentID uint64

	// operation names the operation in progress, e.g. "Get", "Delete",
	// "Flush", "OpenSegmentFile", "CreateStorageDir".
	operation string
}

// NewEngineError creates a new engine-specific error with the given cause,
// code, and message.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{cause: err, code: code, message: msg}
}

// Error renders the code, message, and any key/segment/operation/detail
// context attached via the With* methods, so logging the error through
// zap's default formatting (or a bare %v) surfaces everything it knows.
func (ee *EngineError) Error() string {
	s := fmt.Sprintf("%s: %s", ee.code, ee.message)
	for _, kv := range ee.context() {
		s += " " + kv
	}
	if ee.cause != nil {
		s += ": " + ee.cause.Error()
	}
	return s
}

// Unwrap exposes the underlying cause, if any, for errors.Is/errors.As.
func (ee *EngineError) Unwrap() error {
	return ee.cause
}

// Code returns the error's taxonomy code (spec §7).
func (ee *EngineError) Code() ErrorCode {
	return ee.code
}

func (ee *EngineError) context() []string {
	var kvs []string
	if ee.operation != "" {
		kvs = append(kvs, fmt.Sprintf("operation=%s", ee.operation))
	}
	if ee.key != "" {
		kvs = append(kvs, fmt.Sprintf("key=%q", ee.key))
	}
	if ee.segmentID != 0 {
		kvs = append(kvs, fmt.Sprintf("segmentID=%d", ee.segmentID))
	}
	if len(ee.details) == 0 {
		return kvs
	}
	keys := make([]string, 0, len(ee.details))
	for k := range ee.details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kvs = append(kvs, fmt.Sprintf("%s=%v", k, ee.details[k]))
	}
	return kvs
}

// WithDetail attaches a free-form key/value pair of debugging context.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	if ee.details == nil {
		ee.details = make(map[string]any)
	}
	ee.details[key] = value
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithSegmentID captures which segment was involved in the error.
func (ee *EngineError) WithSegmentID(segmentID uint64) *EngineError {
	ee.segmentID = segmentID
	return ee
}

// WithOperation records what operation was being performed.
func (ee *EngineError) WithOperation(operation string) *EngineError {
	ee.operation = operation
	return ee
}

// NewKeyNotFoundError creates a specialized error for a delete of a key
// absent from the memtable and every segment (spec §7 "not_found").
func NewKeyNotFoundError(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeNotFound, "key not found").
		WithKey(key).
		WithOperation("Delete")
}

// NewUnsupportedTypeError creates a specialized error for a value whose
// encoded type tag is neither int32, float64, nor string.
func NewUnsupportedTypeError(key string, typeTag byte) *EngineError {
	return NewEngineError(nil, ErrorCodeUnsupportedType, "unsupported value type").
		WithKey(key).
		WithDetail("typeTag", typeTag)
}
