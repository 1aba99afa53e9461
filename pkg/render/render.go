// Package render formats rows and tables for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/ajitpratap0/delimtab/pkg/table"
)

// Separator joins fields printed by Row.
const Separator = ", "

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// View is the part of a table that Table renders.
type View[T table.Scalar] interface {
	Header() *table.Row[string]
	RowAt(n int) (*table.Row[T], error)
	RowCount() int
	ColumnCount() int
}

// Row formats the first n fields of row. A negative n drops the last |n|
// fields instead. n is clamped to the row length and an empty range
// yields "".
func Row[T table.Scalar](row *table.Row[T], n int) string {
	size := row.Len()
	end := n
	if n < 0 {
		end = size + n
	}
	end = min(end, size)
	if end <= 0 {
		return ""
	}
	return strings.Join(row.Strings()[:end], Separator)
}

// Print writes Row(row, n) and a newline to w.
func Print[T table.Scalar](w io.Writer, row *table.Row[T], n int) error {
	_, err := fmt.Fprintln(w, Row(row, n))
	return err
}

// Table renders the header and up to limit rows of v as a bordered
// table. limit <= 0 renders every row. A footer notes how many rows were
// left out.
func Table[T table.Scalar](v View[T], limit int) string {
	total := v.RowCount()
	shown := total
	if limit > 0 {
		shown = min(limit, total)
	}

	rows := make([][]string, 0, shown)
	for i := 0; i < shown; i++ {
		row, err := v.RowAt(i)
		if err != nil {
			break
		}
		rows = append(rows, row.Strings())
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(v.Header().Strings()...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	out := t.Render()
	if shown < total {
		out += "\n" + footerStyle.Render(fmt.Sprintf("... %d more rows", total-shown))
	}
	return out
}
