package table

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/delimtab/pkg/compression"
)

type loadOptions struct {
	logger      *zap.Logger
	headerAsRow bool
	compression compression.Algorithm
	name        string
}

// Option configures a load.
type Option func(*loadOptions)

// WithLogger sets the logger used for load diagnostics. The global logger
// from pkg/logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// WithHeaderAsRow also appends the first line as data row 0, converted to
// the table's own kind, in addition to using it as the header.
func WithHeaderAsRow(enabled bool) Option {
	return func(o *loadOptions) {
		o.headerAsRow = enabled
	}
}

// WithCompression selects the codec used by LoadFile. The default,
// compression.Auto, picks it from the file extension.
func WithCompression(alg compression.Algorithm) Option {
	return func(o *loadOptions) {
		o.compression = alg
	}
}

// WithSourceName labels the source in logs and spans when loading from a
// plain reader.
func WithSourceName(name string) Option {
	return func(o *loadOptions) {
		o.name = name
	}
}

func buildOptions(opts []Option) loadOptions {
	o := loadOptions{
		compression: compression.Auto,
		name:        "reader",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
