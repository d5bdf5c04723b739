// Package value implements the tagged scalar stored against every key in
// the engine: a signed 32-bit integer, an IEEE-754 64-bit float, or a
// UTF-8 string. The Kind byte is the externalized discriminant that the
// record codec writes to disk and that the command adapter infers from
// wire text.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindInt marks a signed 32-bit integer value.
	KindInt Kind = iota + 1
	// KindFloat marks an IEEE-754 64-bit float value.
	KindFloat
	// KindString marks a UTF-8 string value.
	KindString
)

// String renders a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is the tagged scalar the engine stores against a key. Only the
// field matching Kind is meaningful; the others are zero.
type Value struct {
	Kind  Kind
	Int   int32
	Float float64
	Str   string
}

// Int32 builds a Value holding a signed 32-bit integer.
func Int32(v int32) Value { return Value{Kind: KindInt, Int: v} }

// Float64 builds a Value holding a 64-bit float.
func Float64(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// String builds a Value holding a UTF-8 string.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// Parse infers a Kind from wire text the way the command adapter's `put`
// handler needs to: an integer literal becomes KindInt, a decimal literal
// becomes KindFloat, anything else is kept as KindString verbatim.
func Parse(text string) Value {
	if i, err := strconv.ParseInt(text, 10, 32); err == nil {
		return Int32(int32(i))
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return Float64(f)
	}
	return String(text)
}

// Text renders the Value the way a `get` response puts it on the wire.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindString:
		return v.Str == other.Str
	default:
		return false
	}
}

// ByteSize estimates the number of bytes the value's payload occupies,
// used by the memtable's monotonic resident-size estimator.
func (v Value) ByteSize() int {
	switch v.Kind {
	case KindInt:
		return 4
	case KindFloat:
		return 8
	case KindString:
		return len(v.Str)
	default:
		return 0
	}
}

// GoString supports %#v-style debugging output.
func (v Value) GoString() string {
	return fmt.Sprintf("value.Value{Kind: %s, Text: %q}", v.Kind, v.Text())
}
