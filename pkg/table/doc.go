// Package table loads a delimited text source into an in-memory table of
// typed rows.
//
// The first line of the source fixes the column count (delimiter
// occurrences plus one) and is kept as a text header. Every following line
// becomes one Row whose fields are converted to the table's scalar type:
//
//	tbl, err := table.LoadFile[float64](ctx, "prices.csv", ',')
//	if err != nil {
//	    return err
//	}
//	row, err := tbl.RowAt(0)
//
// # Malformed input
//
// A load never fails because of its content. Lines with too few segments
// are padded with the zero value, lines with too many are truncated, and a
// numeric field that does not start with a digit (after any run of spaces
// and signs) becomes zero. Only an unreadable or empty source is an error.
//
// # Quoting
//
// There is none. A delimiter always splits, even inside quotes.
package table
