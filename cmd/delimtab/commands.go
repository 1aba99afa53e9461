package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/export"
	"github.com/ajitpratap0/delimtab/pkg/render"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

func newLoadCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "load [source]",
		Short: "Load a source and print a summary",
		Long: `Load a source and print its shape, the header, how many lines had to be
padded or truncated, how many fields were coerced to zero, and the memory in use.

Example:
  delimtab load --kind float prices.csv.gz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, v, args)
			if err != nil {
				return err
			}
			defer s.finish()

			out := cmd.OutOrStdout()
			return byKind(s.cfg.Kind,
				func() error { return runLoad[string](s, out) },
				func() error { return runLoad[int64](s, out) },
				func() error { return runLoad[float64](s, out) },
			)
		},
	}
}

func runLoad[T table.Scalar](s *session, out io.Writer) error {
	began := time.Now()
	tbl, err := table.LoadFile[T](s.ctx, s.cfg.Source, s.cfg.DelimiterRune(), s.loadOptions()...)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	stats := tbl.Stats()
	fmt.Fprintf(out, "Source:          %s\n", s.cfg.Source)
	fmt.Fprintf(out, "Kind:            %s\n", table.TypeName[T]())
	fmt.Fprintf(out, "Columns:         %d\n", tbl.ColumnCount())
	fmt.Fprintf(out, "Rows:            %d\n", tbl.RowCount())
	fmt.Fprintf(out, "Header:          %s\n", render.Row(tbl.Header(), tbl.ColumnCount()))
	fmt.Fprintf(out, "Lines read:      %d\n", stats.Lines)
	fmt.Fprintf(out, "Padded rows:     %d\n", stats.PaddedRows)
	fmt.Fprintf(out, "Truncated rows:  %d\n", stats.TruncatedRows)
	fmt.Fprintf(out, "Coerced fields:  %d\n", stats.CoercedFields)
	fmt.Fprintf(out, "Load time:       %s\n", elapsed.Round(time.Microsecond))
	if rss, err := residentMemory(); err == nil {
		fmt.Fprintf(out, "Resident memory: %.1f MiB\n", float64(rss)/(1<<20))
	} else {
		s.log.Debug("failed to read process memory", zap.Error(err))
	}
	return nil
}

func residentMemory() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

func newShowCmd(v *viper.Viper) *cobra.Command {
	var limit, row, fields int

	cmd := &cobra.Command{
		Use:   "show [source]",
		Short: "Print the table or a single row",
		Long: `Print the header and rows as a table. With --row, print only that row as a
comma separated list; --fields limits it to the first n fields, or drops the
last |n| fields when negative.

Example:
  delimtab show --limit 20 data.tsv --delimiter '\t'
  delimtab show --row 3 --fields -1 data.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, v, args)
			if err != nil {
				return err
			}
			defer s.finish()

			out := cmd.OutOrStdout()
			showRow := cmd.Flags().Changed("row")
			return byKind(s.cfg.Kind,
				func() error { return runShow[string](s, out, limit, showRow, row, fields) },
				func() error { return runShow[int64](s, out, limit, showRow, row, fields) },
				func() error { return runShow[float64](s, out, limit, showRow, row, fields) },
			)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to print (0 prints all)")
	cmd.Flags().IntVar(&row, "row", 0, "Print only this row index")
	cmd.Flags().IntVar(&fields, "fields", 0, "Fields of --row to print (0 prints all)")
	return cmd
}

func runShow[T table.Scalar](s *session, out io.Writer, limit int, showRow bool, n, fields int) error {
	tbl, err := table.LoadFile[T](s.ctx, s.cfg.Source, s.cfg.DelimiterRune(), s.loadOptions()...)
	if err != nil {
		return err
	}

	if !showRow {
		_, err := fmt.Fprintln(out, render.Table[T](tbl, limit))
		return err
	}

	row, err := tbl.RowAt(n)
	if err != nil {
		return err
	}
	if fields == 0 {
		fields = row.Len()
	}
	return render.Print(out, row, fields)
}

func newExportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Convert a source to JSON, Arrow, Avro or SQLite",
		Long: `Load a source and write it in another format.

Formats:
  json    {"columns": [...], "rows": [[...], ...]}
  flat    all fields as one row-major array
  nested  an array of row arrays
  arrow   an Arrow IPC file
  avro    an Avro object container file
  sqlite  a table in a SQLite database file (requires --output)

Example:
  delimtab export --kind int --format arrow --output orders.arrow orders.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := start(cmd, v, args)
			if err != nil {
				return err
			}
			defer s.finish()

			return byKind(s.cfg.Kind,
				func() error { return runExport[string](s, cmd.OutOrStdout()) },
				func() error { return runExport[int64](s, cmd.OutOrStdout()) },
				func() error { return runExport[float64](s, cmd.OutOrStdout()) },
			)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Export format: json, flat, nested, arrow, avro or sqlite")
	cmd.Flags().StringP("output", "o", "", `Output path, or "-" for stdout`)
	cmd.Flags().String("table", "", "SQLite table name and Avro record name")
	cmd.Flags().String("avro-compression", "", "Avro block codec: null, deflate or snappy")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func runExport[T table.Scalar](s *session, stdout io.Writer) (err error) {
	tbl, err := table.LoadFile[T](s.ctx, s.cfg.Source, s.cfg.DelimiterRune(), s.loadOptions()...)
	if err != nil {
		return err
	}

	ec := s.cfg.Export
	log := s.log.With(zap.String("format", ec.Format), zap.String("output", ec.Output))

	if export.Format(ec.Format) == export.FormatSQLite {
		if ec.Output == "" || ec.Output == "-" {
			return errors.New(errors.ErrorTypeValidation, "sqlite export requires --output")
		}
		if err := export.ToSQLiteFile[T](s.ctx, ec.Output, ec.Table, tbl); err != nil {
			return err
		}
		log.Info("exported table", zap.Int("rows", tbl.RowCount()))
		return nil
	}

	format, err := export.ParseFormat(ec.Format)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(ec.Output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if format == export.FormatAvro {
		err = export.WriteAvro[T](s.ctx, w, tbl, export.AvroOptions{
			Name:        ec.Table,
			Compression: ec.AvroCompression,
		})
	} else {
		err = export.Write[T](s.ctx, w, format, tbl)
	}
	if err != nil {
		return err
	}
	log.Info("exported table", zap.Int("rows", tbl.RowCount()))
	return nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeExport, "failed to create output file").
			WithDetail("path", path)
	}
	return f, f.Close, nil
}
