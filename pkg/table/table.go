package table

import (
	"bufio"
	"context"
	"io"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/delimtab/pkg/compression"
	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/logger"
	"github.com/ajitpratap0/delimtab/pkg/metrics"
	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/source"
)

// Table is a fully materialized delimited source: a text header row plus
// data rows of one scalar type, all exactly ColumnCount fields wide.
//
// A Table is safe for concurrent reads. RemoveRowAt must be serialized by
// the caller.
type Table[T Scalar] struct {
	delimiter   rune
	columnCount int
	header      *Row[string]
	rows        []*Row[T]
	stats       LoadStats
}

// LoadStats summarizes the anomalies absorbed while loading.
type LoadStats struct {
	// Lines is the number of lines read, header included
	Lines int
	// PaddedRows had fewer segments than the column count
	PaddedRows int
	// TruncatedRows had more segments than the column count
	TruncatedRows int
	// CoercedFields were non-empty numeric fields replaced by zero
	CoercedFields int
}

// Load reads every line of r into a new table. The first line fixes the
// column count (delimiter occurrences plus one) and becomes the header.
// Each following line becomes one data row.
//
// Only an unreadable or empty source fails the load; malformed fields and
// short or long lines are absorbed. ctx carries trace and log values, it
// does not cancel the load.
func Load[T Scalar](ctx context.Context, r io.Reader, delim rune, opts ...Option) (*Table[T], error) {
	o := buildOptions(opts)
	return load[T](ctx, func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}, delim, o)
}

// LoadFile opens location through pkg/source (a local path, "-" for stdin,
// s3://bucket/key or gs://bucket/object), decompresses it and loads it.
func LoadFile[T Scalar](ctx context.Context, location string, delim rune, opts ...Option) (*Table[T], error) {
	o := buildOptions(append([]Option{WithSourceName(location)}, opts...))
	return load[T](ctx, func(ctx context.Context) (io.ReadCloser, error) {
		return source.Open(ctx, location)
	}, delim, o)
}

type opener func(context.Context) (io.ReadCloser, error)

func load[T Scalar](ctx context.Context, open opener, delim rune, o loadOptions) (tbl *Table[T], err error) {
	kind := TypeName[T]()
	timer := metrics.NewTimer()

	ctx, span := observability.StartSpan(ctx, "table.Load",
		attribute.String("source", o.name),
		attribute.String("kind", kind),
		attribute.String("delimiter", string(delim)),
	)
	defer func() {
		metrics.ObserveLoad(kind, timer, err)
		observability.EndSpan(span, err)
	}()

	base := o.logger
	if base == nil {
		base = logger.Get()
	}
	log := logger.FromContext(ctx, base).With(zap.String("source", o.name), zap.String("kind", kind))

	if err := validateDelimiter(delim); err != nil {
		return nil, err
	}

	raw, err := open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceUnavailable, "failed to open source").
			WithDetail("source", o.name)
	}
	defer raw.Close()

	rc, err := compression.NewReader(raw, compression.Resolve(o.compression, o.name))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceUnavailable, "failed to decompress source").
			WithDetail("source", o.name)
	}
	defer rc.Close()

	lines := newLineReader(rc)
	first, ok, err := lines.next()
	if err != nil {
		return nil, readError(err, o.name, lines.count)
	}
	if !ok {
		return nil, errors.New(errors.ErrorTypeEmptySource, "source has no lines").
			WithDetail("source", o.name)
	}

	cols := countColumns(first, delim)
	t := &Table[T]{
		delimiter:   delim,
		columnCount: cols,
		header:      NewRow[string](first, cols, delim),
	}
	t.stats.Lines = 1
	if o.headerAsRow {
		t.appendLine(first, log)
	}

	for {
		line, ok, err := lines.next()
		if err != nil {
			return nil, readError(err, o.name, lines.count)
		}
		if !ok {
			break
		}
		t.stats.Lines++
		t.appendLine(line, log)
	}

	span.SetAttributes(
		attribute.Int("columns", t.columnCount),
		attribute.Int("rows", len(t.rows)),
		attribute.Int("fields_coerced", t.stats.CoercedFields),
	)
	metrics.ObserveRows(kind, len(t.rows), t.stats.PaddedRows, t.stats.TruncatedRows, t.stats.CoercedFields)

	log.Info("read rows",
		zap.Int("rows", len(t.rows)),
		zap.Int("columns", t.columnCount),
		zap.Int("padded_rows", t.stats.PaddedRows),
		zap.Int("truncated_rows", t.stats.TruncatedRows),
		zap.Int("fields_coerced", t.stats.CoercedFields),
		zap.Duration("elapsed", timer.Elapsed()),
	)
	return t, nil
}

func (t *Table[T]) appendLine(line string, log *zap.Logger) {
	row, shape := buildRow[T](line, t.columnCount, t.delimiter)
	switch {
	case shape.padded(t.columnCount):
		t.stats.PaddedRows++
	case shape.truncated(t.columnCount):
		t.stats.TruncatedRows++
	}
	if shape.coerced > 0 {
		t.stats.CoercedFields += shape.coerced
		log.Debug("coerced malformed fields to zero",
			zap.Int("line", t.stats.Lines),
			zap.Int("fields", shape.coerced))
	}
	t.rows = append(t.rows, row)
}

func validateDelimiter(delim rune) error {
	if delim == '\n' || delim == '\r' || delim == utf8.RuneError || !utf8.ValidRune(delim) {
		return errors.Newf(errors.ErrorTypeValidation, "invalid delimiter %q", delim)
	}
	return nil
}

func readError(err error, name string, line int) error {
	return errors.Wrap(err, errors.ErrorTypeSourceUnavailable, "failed to read source").
		WithDetail("source", name).
		WithDetail("line", line+1)
}

// ColumnCount returns the number of fields in every row.
func (t *Table[T]) ColumnCount() int {
	return t.columnCount
}

// RowCount returns the number of data rows.
func (t *Table[T]) RowCount() int {
	return len(t.rows)
}

// Delimiter returns the delimiter the table was loaded with.
func (t *Table[T]) Delimiter() rune {
	return t.delimiter
}

// Header returns the first line of the source as text fields.
func (t *Table[T]) Header() *Row[string] {
	return t.header
}

// Stats returns the anomalies absorbed during the load.
func (t *Table[T]) Stats() LoadStats {
	return t.stats
}

// RowAt returns data row n.
func (t *Table[T]) RowAt(n int) (*Row[T], error) {
	if n < 0 || n >= len(t.rows) {
		return nil, errors.OutOfRange("row", n, len(t.rows))
	}
	return t.rows[n], nil
}

// RemoveRowAt removes data row n and hands it to the caller. Later rows
// shift down by one.
func (t *Table[T]) RemoveRowAt(n int) (*Row[T], error) {
	if n < 0 || n >= len(t.rows) {
		return nil, errors.OutOfRange("row", n, len(t.rows))
	}
	row := t.rows[n]
	t.rows = slices.Delete(t.rows, n, n+1)
	return row, nil
}

// Rows iterates over the data rows with their positions.
func (t *Table[T]) Rows() iter.Seq2[int, *Row[T]] {
	return func(yield func(int, *Row[T]) bool) {
		for i, r := range t.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// lineReader yields lines without their "\n" or "\r\n" terminator. A
// final line without terminator is still returned.
type lineReader struct {
	r     *bufio.Reader
	count int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (lr *lineReader) next() (string, bool, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if err == io.EOF && line == "" {
		return "", false, nil
	}
	lr.count++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
