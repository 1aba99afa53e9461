package export

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// ArrowType returns the Arrow type used for fields of type T. Platform
// sized int is widened to int64.
func ArrowType[T table.Scalar]() arrow.DataType {
	var zero T
	switch any(zero).(type) {
	case string:
		return arrow.BinaryTypes.String
	case int8:
		return arrow.PrimitiveTypes.Int8
	case int16:
		return arrow.PrimitiveTypes.Int16
	case int32:
		return arrow.PrimitiveTypes.Int32
	case float32:
		return arrow.PrimitiveTypes.Float32
	case float64:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.PrimitiveTypes.Int64
	}
}

// ArrowSchema builds a non-nullable schema with one field per header
// column, named after the header text.
func ArrowSchema[T table.Scalar](v View[T]) *arrow.Schema {
	dt := ArrowType[T]()
	header := v.Header().Entries()
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: dt}
	}
	return arrow.NewSchema(fields, nil)
}

// ArrowRecord builds one record batch holding every row of v. The caller
// must Release it.
func ArrowRecord[T table.Scalar](mem memory.Allocator, v View[T]) (arrow.Record, error) {
	schema := ArrowSchema(v)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i := 0; i < v.RowCount(); i++ {
		row, err := v.RowAt(i)
		if err != nil {
			return nil, err
		}
		for col, value := range row.All() {
			if err := appendArrowValue(b.Field(col), value); err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, col, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendArrowValue[T table.Scalar](builder array.Builder, value T) error {
	switch b := builder.(type) {
	case *array.StringBuilder:
		b.Append(any(value).(string))
	case *array.Int8Builder:
		b.Append(any(value).(int8))
	case *array.Int16Builder:
		b.Append(any(value).(int16))
	case *array.Int32Builder:
		b.Append(any(value).(int32))
	case *array.Int64Builder:
		switch v := any(value).(type) {
		case int:
			b.Append(int64(v))
		case int64:
			b.Append(v)
		}
	case *array.Float32Builder:
		b.Append(any(value).(float32))
	case *array.Float64Builder:
		b.Append(any(value).(float64))
	default:
		return fmt.Errorf("unsupported arrow builder %T", builder)
	}
	return nil
}

// WriteArrow writes v to w as an Arrow IPC file with a single record batch.
func WriteArrow[T table.Scalar](ctx context.Context, w io.Writer, v View[T]) (err error) {
	_, span := observability.StartSpan(ctx, "export.arrow",
		attribute.Int("rows", v.RowCount()),
		attribute.Int("columns", v.ColumnCount()),
	)
	defer func() { observability.EndSpan(span, err) }()

	mem := memory.NewGoAllocator()
	rec, err := ArrowRecord(mem, v)
	if err != nil {
		return exportError(err, FormatArrow)
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return exportError(err, FormatArrow)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return exportError(err, FormatArrow)
	}
	return exportError(fw.Close(), FormatArrow)
}
