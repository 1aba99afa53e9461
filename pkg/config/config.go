package config

import (
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/delimtab/pkg/compression"
	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/logger"
)

// Kinds accepted for Config.Kind.
const (
	KindText  = "text"
	KindInt   = "int"
	KindFloat = "float"
)

// Config is the full set of load, export and logging settings.
type Config struct {
	// Source is a path, "-" for stdin, or an s3:// or gs:// URL
	Source string `yaml:"source" toml:"source"`
	// Delimiter is a single character separating fields
	Delimiter string `yaml:"delimiter" toml:"delimiter"`
	// Kind selects the field type: text, int or float
	Kind string `yaml:"kind" toml:"kind"`
	// HeaderAsRow also stores the header line as the first data row
	HeaderAsRow bool `yaml:"header_as_row" toml:"header_as_row"`
	// Compression is none, gzip, snappy, lz4, zstd, s2 or auto
	Compression string `yaml:"compression" toml:"compression"`

	Log    logger.Config `yaml:"log" toml:"log"`
	Export ExportConfig  `yaml:"export" toml:"export"`
}

// ExportConfig controls the export command.
type ExportConfig struct {
	Format string `yaml:"format" toml:"format"`
	// Output is a file path, or "-" for stdout
	Output string `yaml:"output" toml:"output"`
	// Table names the SQLite table and the Avro record
	Table string `yaml:"table" toml:"table"`
	// AvroCompression is null, deflate or snappy
	AvroCompression string `yaml:"avro_compression" toml:"avro_compression"`
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		Source:      "-",
		Delimiter:   ",",
		Kind:        KindText,
		Compression: string(compression.Auto),
		Log: logger.Config{
			Level:    "info",
			Encoding: "console",
		},
		Export: ExportConfig{
			Format: "json",
			Output: "-",
			Table:  "rows",
		},
	}
}

// DelimiterRune returns the delimiter as a rune. Validate guarantees it is
// exactly one character.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	if c.Source == "" {
		return configError("source", "source is required")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return configError("delimiter", "delimiter must be exactly one character")
	}
	if d := c.DelimiterRune(); d == '\n' || d == '\r' || d == utf8.RuneError {
		return configError("delimiter", "delimiter cannot be a line break")
	}
	switch strings.ToLower(c.Kind) {
	case KindText, KindInt, KindFloat:
	default:
		return configError("kind", "kind must be text, int or float")
	}
	if _, err := compression.ParseAlgorithm(c.Compression); err != nil {
		return configError("compression", err.Error())
	}
	switch c.Export.AvroCompression {
	case "", "null", "deflate", "snappy":
	default:
		return configError("export.avro_compression", "avro compression must be null, deflate or snappy")
	}
	return nil
}

func configError(field, msg string) error {
	return errors.New(errors.ErrorTypeConfig, msg).WithDetail("field", field)
}
