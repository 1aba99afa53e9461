package export

import (
	"context"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// AvroOptions controls the container file written by WriteAvro.
type AvroOptions struct {
	// Name is the record name. Defaults to "Row".
	Name string
	// Compression is "null", "deflate" or "snappy". Defaults to "null".
	Compression string
}

// AvroType returns the Avro primitive used for fields of type T.
func AvroType[T table.Scalar]() string {
	var zero T
	switch any(zero).(type) {
	case string:
		return "string"
	case int8, int16, int32:
		return "int"
	case float32:
		return "float"
	case float64:
		return "double"
	default:
		return "long"
	}
}

// AvroSchema returns the record schema for v. Field names come from
// ColumnNames so every header is a legal Avro identifier.
func AvroSchema[T table.Scalar](v View[T], name string) (string, error) {
	if name == "" {
		name = "Row"
	}
	typ := AvroType[T]()
	fields := make([]map[string]string, 0, v.ColumnCount())
	for _, col := range ColumnNames(v.Header().Entries()) {
		fields = append(fields, map[string]string{"name": col, "type": typ})
	}
	schema, err := gojson.Marshal(map[string]interface{}{
		"type":   "record",
		"name":   sanitize(name),
		"fields": fields,
	})
	if err != nil {
		return "", err
	}
	return string(schema), nil
}

// WriteAvro writes v as an Avro object container file, one record per row.
func WriteAvro[T table.Scalar](ctx context.Context, w io.Writer, v View[T], opts AvroOptions) (err error) {
	_, span := observability.StartSpan(ctx, "export.avro",
		attribute.Int("rows", v.RowCount()),
		attribute.String("compression", opts.Compression),
	)
	defer func() { observability.EndSpan(span, err) }()

	schema, err := AvroSchema(v, opts.Name)
	if err != nil {
		return exportError(err, FormatAvro)
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return exportError(err, FormatAvro)
	}

	compressionName := opts.Compression
	switch compressionName {
	case "":
		compressionName = goavro.CompressionNullLabel
	case goavro.CompressionNullLabel, goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
	default:
		return errors.Newf(errors.ErrorTypeValidation, "unsupported avro compression %q", opts.Compression)
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compressionName,
	})
	if err != nil {
		return exportError(err, FormatAvro)
	}

	names := ColumnNames(v.Header().Entries())
	batch := make([]interface{}, 0, v.RowCount())
	for i := 0; i < v.RowCount(); i++ {
		row, err := v.RowAt(i)
		if err != nil {
			return exportError(err, FormatAvro)
		}
		record := make(map[string]interface{}, len(names))
		for col, value := range row.All() {
			record[names[col]] = avroNative(value)
		}
		batch = append(batch, record)
	}
	if len(batch) == 0 {
		return nil
	}
	return exportError(ocf.Append(batch), FormatAvro)
}

func avroNative[T table.Scalar](value T) interface{} {
	switch v := any(value).(type) {
	case int8:
		return int32(v)
	case int16:
		return int32(v)
	case int:
		return int64(v)
	default:
		return v
	}
}
