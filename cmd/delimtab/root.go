package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/delimtab/pkg/compression"
	"github.com/ajitpratap0/delimtab/pkg/config"
	"github.com/ajitpratap0/delimtab/pkg/logger"
	"github.com/ajitpratap0/delimtab/pkg/observability"
	"github.com/ajitpratap0/delimtab/pkg/table"
)

// Flag names double as viper keys. Each is also read from DELIMTAB_<NAME>.
const (
	flagConfig      = "config"
	flagDelimiter   = "delimiter"
	flagKind        = "kind"
	flagHeaderAsRow = "header-as-row"
	flagCompression = "compression"
	flagLogLevel    = "log-level"
	flagTrace       = "trace"
)

// session is the state shared by one command invocation.
type session struct {
	cfg      *config.Config
	ctx      context.Context
	log      *zap.Logger
	shutdown observability.ShutdownFunc
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DELIMTAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(newViper())
}

func newRootCmdWith(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "delimtab",
		Short: "delimtab - load delimited text into typed tables",
		Long: `delimtab reads delimited text (CSV, TSV and friends) into an in-memory table
of text, integer or floating point fields, then summarizes, prints or exports it.

Sources may be local files, "-" for stdin, s3://bucket/key or gs://bucket/object,
optionally compressed with gzip, zstd, snappy, s2 or lz4.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "Path to a YAML or TOML configuration file")
	flags.StringP(flagDelimiter, "d", ",", "Field delimiter (one character)")
	flags.StringP(flagKind, "k", config.KindText, "Field type: text, int or float")
	flags.Bool(flagHeaderAsRow, false, "Also store the header line as the first data row")
	flags.String(flagCompression, string(compression.Auto), "Compression: none, gzip, snappy, lz4, zstd, s2 or auto")
	flags.String(flagLogLevel, "", "Log level (debug, info, warn, error)")
	flags.Bool(flagTrace, false, "Write trace spans to stderr")
	_ = v.BindPFlags(flags)

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "delimtab v%s\n", version)
				fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
		newLoadCmd(v),
		newShowCmd(v),
		newExportCmd(v),
	)
	return root
}

// resolveConfig layers defaults, the config file, DELIMTAB_* variables and
// explicitly set flags, in that order. A positional source wins over all.
func resolveConfig(v *viper.Viper, args []string) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString(flagConfig); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}

	if v.IsSet(flagDelimiter) {
		cfg.Delimiter = v.GetString(flagDelimiter)
	}
	if v.IsSet(flagKind) {
		cfg.Kind = v.GetString(flagKind)
	}
	if v.IsSet(flagHeaderAsRow) {
		cfg.HeaderAsRow = v.GetBool(flagHeaderAsRow)
	}
	if v.IsSet(flagCompression) {
		cfg.Compression = v.GetString(flagCompression)
	}
	if v.IsSet(flagLogLevel) {
		cfg.Log.Level = v.GetString(flagLogLevel)
	}
	for _, key := range []string{"format", "output", "table", "avro-compression"} {
		if !v.IsSet(key) {
			continue
		}
		switch val := v.GetString(key); key {
		case "format":
			cfg.Export.Format = val
		case "output":
			cfg.Export.Output = val
		case "table":
			cfg.Export.Table = val
		case "avro-compression":
			cfg.Export.AvroCompression = val
		}
	}
	if len(args) > 0 {
		cfg.Source = args[0]
	}

	cfg.Kind = strings.ToLower(cfg.Kind)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// start resolves configuration and sets up logging and tracing for one
// command. The caller must call finish.
func start(cmd *cobra.Command, v *viper.Viper, args []string) (*session, error) {
	cfg, err := resolveConfig(v, args)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}

	exporter := "none"
	if v.GetBool(flagTrace) {
		exporter = "stdout"
	}
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "delimtab",
		ServiceVersion: version,
		ExporterType:   exporter,
		SamplingRate:   1,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	ctx := context.WithValue(cmd.Context(), logger.JobIDKey, uuid.New().String())
	ctx = context.WithValue(ctx, logger.SourceKey, cfg.Source)
	log := logger.WithContext(ctx).With(zap.String("component", "delimtab-cli"))

	return &session{cfg: cfg, ctx: ctx, log: log, shutdown: shutdown}, nil
}

func (s *session) finish() {
	if err := s.shutdown(context.Background()); err != nil {
		s.log.Warn("failed to flush traces", zap.Error(err))
	}
	_ = logger.Sync()
}

func (s *session) loadOptions() []table.Option {
	alg, _ := compression.ParseAlgorithm(s.cfg.Compression)
	return []table.Option{
		table.WithLogger(s.log),
		table.WithHeaderAsRow(s.cfg.HeaderAsRow),
		table.WithCompression(alg),
	}
}

// byKind runs the variant of a generic command matching the configured
// field kind. Integers load as int64 and floats as float64.
func byKind(kind string, text, integer, float func() error) error {
	switch kind {
	case config.KindInt:
		return integer()
	case config.KindFloat:
		return float()
	default:
		return text()
	}
}
