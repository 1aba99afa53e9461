// Package export turns a loaded table into other representations: plain Go
// slices, JSON, Arrow IPC files, Avro container files and SQLite tables.
//
// Exporters only read through View, so they work with any table kind.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// View is the read-only surface of a table that exporters consume.
type View[T table.Scalar] interface {
	Header() *table.Row[string]
	RowAt(n int) (*table.Row[T], error)
	RowCount() int
	ColumnCount() int
}

// Format names an export format.
type Format string

const (
	// FormatJSON writes {"columns": [...], "rows": [[...], ...]}
	FormatJSON Format = "json"
	// FormatFlat writes all fields as one row-major JSON array
	FormatFlat Format = "flat"
	// FormatNested writes a JSON array of row arrays
	FormatNested Format = "nested"
	// FormatArrow writes an Arrow IPC file
	FormatArrow Format = "arrow"
	// FormatAvro writes an Avro object container file
	FormatAvro Format = "avro"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatFlat, FormatNested, FormatArrow, FormatAvro:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrorTypeValidation, "unsupported export format %q", name)
	}
}

// Write exports v to w in the given format.
func Write[T table.Scalar](ctx context.Context, w io.Writer, format Format, v View[T]) error {
	var err error
	switch format {
	case FormatJSON:
		err = WriteJSON(ctx, w, v)
	case FormatFlat:
		err = writeJSONValue(ctx, w, "export.flat", Flat(v))
	case FormatNested:
		err = writeJSONValue(ctx, w, "export.nested", Nested(v))
	case FormatArrow:
		err = WriteArrow(ctx, w, v)
	case FormatAvro:
		err = WriteAvro(ctx, w, v, AvroOptions{})
	default:
		return errors.Newf(errors.ErrorTypeValidation, "unsupported export format %q", format)
	}
	return err
}

// Flat returns every field of v in one contiguous row-major slice of
// length RowCount*ColumnCount.
func Flat[T table.Scalar](v View[T]) []T {
	cols := v.ColumnCount()
	out := make([]T, 0, v.RowCount()*cols)
	for i := 0; i < v.RowCount(); i++ {
		row, err := v.RowAt(i)
		if err != nil {
			break
		}
		out = append(out, row.Entries()...)
	}
	return out
}

// Nested returns one independent slice per row.
func Nested[T table.Scalar](v View[T]) [][]T {
	out := make([][]T, 0, v.RowCount())
	for i := 0; i < v.RowCount(); i++ {
		row, err := v.RowAt(i)
		if err != nil {
			break
		}
		out = append(out, row.Entries())
	}
	return out
}

// ColumnNames turns header fields into unique identifiers made of letters,
// digits and underscores that do not start with a digit. Empty names become
// col_<position>.
func ColumnNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		base := sanitize(h)
		if base == "" {
			base = "col_" + strconv.Itoa(i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

func exportError(err error, format Format) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.ErrorTypeExport, "failed to write "+string(format)).
		WithDetail("format", string(format))
}
