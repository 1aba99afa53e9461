//go:build !linux && !darwin

package mmap

// Supported reports whether Open can map files on this platform.
const Supported = false

func mmap(int, int) ([]byte, error) { return nil, ErrUnsupported }

func munmap([]byte) error { return nil }

func adviseSequential([]byte) error { return nil }
