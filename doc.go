// Package delimtab loads delimited text into typed, in-memory tables.
//
// A source is read line by line. The first line fixes the column count and
// becomes the header; every later line becomes a row holding exactly that
// many fields, padded or truncated as needed. Fields are converted to one
// scalar type per table: text is kept verbatim, while integers and floats
// take the longest numeric prefix of each field and fall back to zero.
//
// # Packages
//
//   - pkg/table: tokenizer, numeric validation, typed conversion, Row and Table
//   - pkg/source: local files, stdin, s3:// and gs:// sources
//   - pkg/compression: gzip, zstd, snappy, s2 and lz4 streams
//   - pkg/export: JSON, Arrow IPC, Avro and SQLite writers
//   - pkg/render: terminal output for rows and tables
//   - pkg/config, pkg/logger, pkg/errors, pkg/metrics, pkg/observability:
//     configuration, logging, typed errors, Prometheus metrics and tracing
//
// # Quick Start
//
//	tbl, err := table.LoadFile[float64](ctx, "prices.csv.gz", ',')
//	if err != nil {
//	    log.Fatal(err)
//	}
//	row, _ := tbl.RowAt(0)
//	fmt.Println(render.Row(row, row.Len()))
//
// The delimtab command wraps the same operations:
//
//	delimtab load --kind float prices.csv.gz
//	delimtab export --kind int --format arrow --output orders.arrow orders.csv
package delimtab
