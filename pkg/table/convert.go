package table

import (
	"errors"
	"fmt"
	"strconv"
)

// Scalar is the set of field types a table can hold: text, signed
// integers of any width and floating point numbers.
type Scalar interface {
	string | int | int8 | int16 | int32 | int64 | float32 | float64
}

// ScalarKind classifies a Scalar type.
type ScalarKind int

const (
	// KindText holds fields verbatim
	KindText ScalarKind = iota
	// KindInteger holds signed integers
	KindInteger
	// KindFloat holds floating point numbers
	KindFloat
)

func (k ScalarKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of T.
func KindOf[T Scalar]() ScalarKind {
	var zero T
	switch any(zero).(type) {
	case string:
		return KindText
	case float32, float64:
		return KindFloat
	default:
		return KindInteger
	}
}

// TypeName returns the Go name of T, e.g. "int64".
func TypeName[T Scalar]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// Convert turns one raw field into T. Text is copied verbatim. Numeric
// kinds parse the leading numeric prefix of raw and fall back to zero when
// raw fails IsNumericCandidate or carries no usable prefix. Integers
// saturate at the bounds of T; floats overflow to ±Inf.
func Convert[T Scalar](raw string) T {
	v, _ := convert[T](raw)
	return v
}

// convert is Convert plus a flag that is false when a non-empty raw field
// was coerced to the zero value.
func convert[T Scalar](raw string) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = raw
		return out, true
	case *int:
		v, ok := parseInt(raw, strconv.IntSize)
		*p = int(v)
		return out, ok
	case *int8:
		v, ok := parseInt(raw, 8)
		*p = int8(v)
		return out, ok
	case *int16:
		v, ok := parseInt(raw, 16)
		*p = int16(v)
		return out, ok
	case *int32:
		v, ok := parseInt(raw, 32)
		*p = int32(v)
		return out, ok
	case *int64:
		v, ok := parseInt(raw, 64)
		*p = v
		return out, ok
	case *float32:
		v, ok := parseFloat(raw, 32)
		*p = float32(v)
		return out, ok
	case *float64:
		v, ok := parseFloat(raw, 64)
		*p = v
		return out, ok
	}
	return out, false
}

// parseInt reads [spaces][sign]digits from the front of s. strconv
// saturates out of range values at the bounds of bitSize.
func parseInt(s string, bitSize int) (int64, bool) {
	if !IsNumericCandidate(s) {
		return 0, s == ""
	}
	start, end := integerPrefix(s)
	if start == end {
		return 0, false
	}
	v, err := strconv.ParseInt(s[start:end], 10, bitSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// parseFloat reads [spaces][sign]digits[.digits][(e|E)[sign]digits] from
// the front of s.
func parseFloat(s string, bitSize int) (float64, bool) {
	if !IsNumericCandidate(s) {
		return 0, s == ""
	}
	start, end := integerPrefix(s)
	if start == end {
		return 0, false
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
		}
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		digits := exp
		for digits < len(s) && isDigit(s[digits]) {
			digits++
		}
		if digits > exp {
			end = digits
		}
	}
	v, err := strconv.ParseFloat(s[start:end], bitSize)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// integerPrefix returns the bounds of [sign]digits after leading spaces.
// start == end when no digit follows the optional sign.
func integerPrefix(s string) (start, end int) {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	start = i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digits {
		return start, start
	}
	return start, i
}
