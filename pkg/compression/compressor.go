// Package compression opens compressed delimited sources for reading and
// writes compressed output, selecting the codec by name or file extension.
//
// # Overview
//
// Supported algorithms:
//   - Gzip: wide compatibility (.gz)
//   - Zstd: best compression ratio (.zst, .zstd)
//   - Snappy: framed snappy stream (.sz, .snappy)
//   - S2: snappy compatible, faster (.s2)
//   - LZ4: extremely fast (.lz4)
//
// # Basic Usage
//
//	rc, err := compression.NewReader(file, compression.Detect(path))
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Auto selects the algorithm from the source file extension
	Auto Algorithm = "auto"
)

// Level represents compression level for writers.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

func (l Level) String() string {
	switch l {
	case Fastest:
		return "Fastest"
	case Default:
		return "Default"
	case Better:
		return "Better"
	case Best:
		return "Best"
	default:
		return "Unknown"
	}
}

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".sz":     Snappy,
	".snappy": Snappy,
	".s2":     S2,
	".lz4":    LZ4,
}

// ParseAlgorithm maps a configuration value onto an Algorithm.
// The empty string means Auto.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return Auto, nil
	case None, Gzip, Snappy, LZ4, Zstd, S2, Auto:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// Detect returns the algorithm implied by the extension of path, or None.
func Detect(path string) Algorithm {
	if alg, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return alg
	}
	return None
}

// Resolve turns Auto into a concrete algorithm using path.
func Resolve(alg Algorithm, path string) Algorithm {
	if alg == Auto || alg == "" {
		return Detect(path)
	}
	return alg
}

// NewReader wraps r with a decompressor for alg. Closing the returned
// reader releases decoder resources but never closes r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return gr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w with a compressor for alg. Close flushes the stream
// trailer but never closes w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return gw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case S2:
		return s2.NewWriter(w), nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, fmt.Errorf("failed to set LZ4 compression level: %w", err)
		}
		return lw, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
