package export

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

func load[T table.Scalar](t *testing.T, content string) *table.Table[T] {
	t.Helper()
	tbl, err := table.Load[T](context.Background(), strings.NewReader(content), ',')
	require.NoError(t, err)
	return tbl
}

func TestFlatAndNested(t *testing.T) {
	tbl := load[int64](t, "a,b\n1,2\n3,4\n5\n")

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 0}, Flat[int64](tbl))
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5, 0}}, Nested[int64](tbl))

	nested := Nested[int64](tbl)
	nested[0][0] = 99
	row, err := tbl.RowAt(0)
	require.NoError(t, err)
	v, _ := row.Entry(0)
	assert.Equal(t, int64(1), v)
}

func TestFlatEmptyTable(t *testing.T) {
	tbl := load[float64](t, "x,y,z\n")
	assert.Empty(t, Flat[float64](tbl))
	assert.Empty(t, Nested[float64](tbl))
}

func TestColumnNames(t *testing.T) {
	got := ColumnNames([]string{"id", "first name", "", "id", "9lives", "id_1", " pad "})
	assert.Equal(t, []string{"id", "first_name", "col_2", "id_1", "_9lives", "id_1_1", "pad"}, got)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Arrow ")
	require.NoError(t, err)
	assert.Equal(t, FormatArrow, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestWriteJSON(t *testing.T) {
	tbl := load[string](t, "name,city\nann,<Oslo>\nbob\n")

	var buf bytes.Buffer
	require.NoError(t, Write[string](context.Background(), &buf, FormatJSON, tbl))

	var doc Document[string]
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"name", "city"}, doc.Columns)
	assert.Equal(t, [][]string{{"ann", "<Oslo>"}, {"bob", ""}}, doc.Rows)
	assert.Contains(t, buf.String(), "<Oslo>")
}

func TestWriteFlatAndNestedJSON(t *testing.T) {
	tbl := load[float64](t, "a,b\n1.5,2\n")

	var flat, nested bytes.Buffer
	require.NoError(t, Write[float64](context.Background(), &flat, FormatFlat, tbl))
	require.NoError(t, Write[float64](context.Background(), &nested, FormatNested, tbl))
	assert.JSONEq(t, `[1.5, 2]`, flat.String())
	assert.JSONEq(t, `[[1.5, 2]]`, nested.String())
}

func TestWriteJSONRejectsInfinity(t *testing.T) {
	tbl := load[float64](t, "a\n1e400\n")

	var buf bytes.Buffer
	err := WriteJSON[float64](context.Background(), &buf, tbl)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExport))
}

func TestWriteUnknownFormat(t *testing.T) {
	tbl := load[string](t, "a\n")
	err := Write[string](context.Background(), &bytes.Buffer{}, Format("xml"), tbl)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestWriteArrow(t *testing.T) {
	tbl := load[int32](t, "x,y\n1,2\n-3,abc\n")

	var buf bytes.Buffer
	require.NoError(t, WriteArrow[int32](context.Background(), &buf, tbl))

	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.NumRecords())
	schema := r.Schema()
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, "x", schema.Field(0).Name)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int32, schema.Field(1).Type))

	rec, err := r.Record(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, []int32{1, -3}, rec.Column(0).(*array.Int32).Int32Values())
	assert.Equal(t, []int32{2, 0}, rec.Column(1).(*array.Int32).Int32Values())
}

func TestArrowRecordText(t *testing.T) {
	tbl := load[string](t, "k,v\na,b\n")

	rec, err := ArrowRecord[string](memory.NewGoAllocator(), tbl)
	require.NoError(t, err)
	defer rec.Release()

	col := rec.Column(1).(*array.String)
	assert.Equal(t, "b", col.Value(0))
}

func TestArrowType(t *testing.T) {
	assert.Equal(t, arrow.PrimitiveTypes.Int64, ArrowType[int]())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, ArrowType[int64]())
	assert.Equal(t, arrow.PrimitiveTypes.Int8, ArrowType[int8]())
	assert.Equal(t, arrow.PrimitiveTypes.Float32, ArrowType[float32]())
	assert.Equal(t, arrow.BinaryTypes.String, ArrowType[string]())
}

func TestWriteAvro(t *testing.T) {
	for _, compression := range []string{"", goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel} {
		t.Run("codec="+compression, func(t *testing.T) {
			tbl := load[int64](t, "order id,qty\n1,2\n3\n")

			var buf bytes.Buffer
			require.NoError(t, WriteAvro[int64](context.Background(), &buf, tbl, AvroOptions{
				Name:        "orders",
				Compression: compression,
			}))

			r, err := goavro.NewOCFReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)

			var records []map[string]interface{}
			for r.Scan() {
				datum, err := r.Read()
				require.NoError(t, err)
				records = append(records, datum.(map[string]interface{}))
			}
			require.NoError(t, r.Err())
			require.Len(t, records, 2)
			assert.Equal(t, int64(1), records[0]["order_id"])
			assert.Equal(t, int64(0), records[1]["qty"])
		})
	}
}

func TestWriteAvroNarrowTypes(t *testing.T) {
	tbl := load[int8](t, "a\n300\n")

	var buf bytes.Buffer
	require.NoError(t, WriteAvro[int8](context.Background(), &buf, tbl, AvroOptions{}))

	r, err := goavro.NewOCFReader(&buf)
	require.NoError(t, err)
	require.True(t, r.Scan())
	datum, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, int32(127), datum.(map[string]interface{})["a"])
}

func TestWriteAvroBadCompression(t *testing.T) {
	tbl := load[string](t, "a\nb\n")
	err := WriteAvro[string](context.Background(), &bytes.Buffer{}, tbl, AvroOptions{Compression: "brotli"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAvroSchema(t *testing.T) {
	tbl := load[float32](t, "a,b\n")
	schema, err := AvroSchema[float32](tbl, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"record","name":"Row","fields":[{"name":"a","type":"float"},{"name":"b","type":"float"}]}`, schema)
}

func TestToSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	tbl := load[float64](t, "price,qty\n1.5,2\n3\n")

	ctx := context.Background()
	if err := ToSQLiteFile[float64](ctx, path, "items", tbl); err != nil &&
		strings.Contains(err.Error(), "CGO_ENABLED=0") {
		t.Skip("sqlite3 requires cgo")
	} else {
		require.NoError(t, err)
	}

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "items"`).Scan(&count))
	assert.Equal(t, 2, count)

	var sum float64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT SUM(price * qty) FROM "items"`).Scan(&sum))
	assert.InDelta(t, 3.0, sum, 1e-9)

	// Exporting again replaces the table.
	require.NoError(t, ToSQLiteFile[float64](ctx, path, "items", tbl))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "items"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestWriteSQLiteRequiresName(t *testing.T) {
	tbl := load[string](t, "a\n")
	err := WriteSQLite[string](context.Background(), nil, "  ", tbl)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSQLiteType(t *testing.T) {
	assert.Equal(t, "INTEGER", SQLiteType[int16]())
	assert.Equal(t, "REAL", SQLiteType[float32]())
	assert.Equal(t, "TEXT", SQLiteType[string]())
}
