// Package mmap reads local files through a read-only memory mapping.
package mmap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrEmpty is returned for zero-length files, which cannot be mapped.
var ErrEmpty = errors.New("file is empty")

// ErrUnsupported is returned on platforms without mmap support.
var ErrUnsupported = errors.New("mmap is not supported on this platform")

// Reader is an io.ReadCloser over a memory-mapped file. It is not safe for
// concurrent Read calls; ReadAt and Bytes may be used concurrently until
// Close.
type Reader struct {
	file *os.File
	data []byte
	*bytes.Reader

	closeOnce sync.Once
	closeErr  error
}

// Open maps filename read-only and hints the kernel that it will be read
// sequentially.
func Open(filename string) (*Reader, error) {
	if !Supported {
		return nil, ErrUnsupported
	}

	file, err := os.Open(filename) //nolint:gosec // G304: path is supplied by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() == 0 {
		file.Close()
		return nil, ErrEmpty
	}

	data, err := mmap(int(file.Fd()), int(stat.Size()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	// Advisory only
	_ = adviseSequential(data)

	return &Reader{
		file:   file,
		data:   data,
		Reader: bytes.NewReader(data),
	}, nil
}

// Bytes returns the mapped file contents. The slice is invalid after Close.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Size returns the file size in bytes.
func (r *Reader) Size() int64 {
	return int64(len(r.data))
}

// Close unmaps the file and closes it. Further calls return the first
// result.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.Reader = bytes.NewReader(nil)
		if err := munmap(r.data); err != nil {
			r.closeErr = fmt.Errorf("failed to munmap file: %w", err)
		}
		r.data = nil
		if err := r.file.Close(); err != nil && r.closeErr == nil {
			r.closeErr = err
		}
	})
	return r.closeErr
}

var _ io.ReadCloser = (*Reader)(nil)
