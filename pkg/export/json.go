package export

import (
	"context"
	"io"

	gojson "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// Document is the JSON shape written by WriteJSON.
type Document[T table.Scalar] struct {
	Columns []string `json:"columns"`
	Rows    [][]T    `json:"rows"`
}

// WriteJSON writes the header and all rows of v as one JSON document.
// Non-finite floats cannot be represented and fail the export.
func WriteJSON[T table.Scalar](ctx context.Context, w io.Writer, v View[T]) error {
	doc := Document[T]{
		Columns: v.Header().Entries(),
		Rows:    Nested(v),
	}
	return writeJSONValue(ctx, w, "export.json", doc)
}

func writeJSONValue(ctx context.Context, w io.Writer, operation string, value interface{}) (err error) {
	_, span := observability.StartSpan(ctx, operation, attribute.String("format", "json"))
	defer func() { observability.EndSpan(span, err) }()

	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return exportError(enc.Encode(value), FormatJSON)
}
