package table

import (
	"iter"
	"slices"
	"strconv"

	"github.com/ajitpratap0/delimtab/pkg/errors"
)

// Row is a fixed-length sequence of fields of one scalar type built from
// a single line. Fields are immutable once the row is built.
type Row[T Scalar] struct {
	fields []T
}

// rowShape describes how a line fit the column count while it was converted.
type rowShape struct {
	segments int
	coerced  int
}

func (s rowShape) padded(columns int) bool    { return s.segments < columns }
func (s rowShape) truncated(columns int) bool { return s.segments > columns }

// NewRow splits line into columnCount segments and converts each to T.
// Short lines are padded with the zero value and long lines truncated.
func NewRow[T Scalar](line string, columnCount int, delim rune) *Row[T] {
	row, _ := buildRow[T](line, columnCount, delim)
	return row
}

func buildRow[T Scalar](line string, columnCount int, delim rune) (*Row[T], rowShape) {
	raw, segments := split(line, delim, columnCount)
	shape := rowShape{segments: segments}

	fields := make([]T, len(raw))
	for i, s := range raw {
		v, ok := convert[T](s)
		if !ok {
			shape.coerced++
		}
		fields[i] = v
	}
	return &Row[T]{fields: fields}, shape
}

// Len returns the number of fields, always the table's column count.
func (r *Row[T]) Len() int {
	return len(r.fields)
}

// Entry returns the field at position n.
func (r *Row[T]) Entry(n int) (T, error) {
	if n < 0 || n >= len(r.fields) {
		var zero T
		return zero, errors.OutOfRange("field", n, len(r.fields))
	}
	return r.fields[n], nil
}

// Entries returns a copy of all fields in order.
func (r *Row[T]) Entries() []T {
	return slices.Clone(r.fields)
}

// All iterates over the fields with their positions.
func (r *Row[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range r.fields {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Strings formats every field as text: verbatim for text rows, base 10
// for integers and shortest round-trip notation for floats.
func (r *Row[T]) Strings() []string {
	out := make([]string, len(r.fields))
	for i, v := range r.fields {
		out[i] = FormatField(v)
	}
	return out
}

// FormatField renders one field as text.
func FormatField[T Scalar](v T) string {
	switch x := any(v).(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return ""
}
