// Package logger provides structured logging for delimtab
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	mu           sync.Mutex
)

// contextKey is the type for context keys
type contextKey string

const (
	// JobIDKey is the context key for the job ID of a CLI invocation
	JobIDKey contextKey = "job_id"
	// SourceKey is the context key for the source being loaded
	SourceKey contextKey = "source"
)

// Config represents logger configuration
type Config struct {
	Level       string   `yaml:"level" toml:"level"`
	Development bool     `yaml:"development" toml:"development"`
	Encoding    string   `yaml:"encoding" toml:"encoding"` // json or console
	OutputPaths []string `yaml:"output_paths" toml:"output_paths"`
}

// Init initializes the global logger, replacing any previous one
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = l
	return nil
}

// New creates a new zap logger
func New(cfg Config) (*zap.Logger, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.Development {
		logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return logger, nil
}

// Get returns the global logger
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		// Nothing configured yet: stay quiet rather than guess an output
		globalLogger = zap.NewNop()
	}
	return globalLogger
}

// WithContext returns a logger with context values
func WithContext(ctx context.Context) *zap.Logger {
	return FromContext(ctx, Get())
}

// FromContext decorates base with the values stored in ctx
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base

	if jobID, ok := ctx.Value(JobIDKey).(string); ok {
		logger = logger.With(zap.String("job_id", jobID))
	}

	if source, ok := ctx.Value(SourceKey).(string); ok {
		logger = logger.With(zap.String("source", source))
	}

	return logger
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
