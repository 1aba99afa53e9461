package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// FormatSQLite names the SQLite exporter. It writes to a database file
// rather than a stream, so Write does not accept it.
const FormatSQLite Format = "sqlite"

// SQLiteType returns the column affinity used for fields of type T.
func SQLiteType[T table.Scalar]() string {
	switch table.KindOf[T]() {
	case table.KindInteger:
		return "INTEGER"
	case table.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// ToSQLiteFile opens (or creates) the database at path and writes v into
// table name, replacing any existing table of that name.
func ToSQLiteFile[T table.Scalar](ctx context.Context, path, name string, v View[T]) error {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return exportError(err, FormatSQLite)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return exportError(err, FormatSQLite)
	}
	return WriteSQLite(ctx, db, name, v)
}

// WriteSQLite writes v into table name of db inside one transaction. The
// table is dropped and recreated first.
func WriteSQLite[T table.Scalar](ctx context.Context, db *sql.DB, name string, v View[T]) (err error) {
	ctx, span := observability.StartSpan(ctx, "export.sqlite",
		attribute.String("table", name),
		attribute.Int("rows", v.RowCount()),
	)
	defer func() { observability.EndSpan(span, err) }()

	tableName := sanitize(name)
	if tableName == "" {
		return errors.New(errors.ErrorTypeValidation, "sqlite table name is required")
	}
	cols := ColumnNames(v.Header().Entries())
	typ := SQLiteType[T]()

	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
		defs[i] = quoted[i] + " " + typ
		marks[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return exportError(err, FormatSQLite)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, tableName),
		fmt.Sprintf(`CREATE TABLE "%s" (%s)`, tableName, strings.Join(defs, ", ")),
	}
	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return exportError(err, FormatSQLite)
		}
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO "%s" (%s) VALUES (%s)`,
		tableName, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return exportError(err, FormatSQLite)
	}
	defer insert.Close()

	args := make([]interface{}, len(cols))
	for i := 0; i < v.RowCount(); i++ {
		row, rowErr := v.RowAt(i)
		if rowErr != nil {
			err = rowErr
			return exportError(err, FormatSQLite)
		}
		for col, value := range row.All() {
			args[col] = value
		}
		if _, err = insert.ExecContext(ctx, args...); err != nil {
			return exportError(err, FormatSQLite)
		}
	}

	if err = tx.Commit(); err != nil {
		return exportError(err, FormatSQLite)
	}
	return nil
}
