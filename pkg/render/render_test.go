package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/delimtab/pkg/table"
)

func TestRow(t *testing.T) {
	row := table.NewRow[int64]("1,2,3,4", 4, ',')

	tests := []struct {
		n    int
		want string
	}{
		{4, "1, 2, 3, 4"},
		{10, "1, 2, 3, 4"},
		{2, "1, 2"},
		{1, "1"},
		{0, ""},
		{-1, "1, 2, 3"},
		{-3, "1"},
		{-4, ""},
		{-9, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Row(row, tt.n), "n=%d", tt.n)
	}
}

func TestRowFloatAndText(t *testing.T) {
	assert.Equal(t, "1.5, 0", Row(table.NewRow[float64]("1.5,x", 2, ','), 2))
	assert.Equal(t, "a, , c", Row(table.NewRow[string]("a,,c", 3, ','), 3))
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, table.NewRow[string]("x;y", 2, ';'), -1))
	assert.Equal(t, "x\n", buf.String())
}

func TestTable(t *testing.T) {
	tbl, err := table.Load[int64](context.Background(), strings.NewReader("id,qty\n1,10\n2,20\n3,30\n"), ',')
	require.NoError(t, err)

	out := Table[int64](tbl, 0)
	for _, want := range []string{"id", "qty", "10", "20", "30"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "more rows")

	out = Table[int64](tbl, 2)
	assert.Contains(t, out, "20")
	assert.NotContains(t, out, "30")
	assert.Contains(t, out, "1 more rows")
}
