//go:build linux

package mmap

import (
	"syscall"
)

// Supported reports whether Open can map files on this platform.
const Supported = true

func mmap(fd int, length int) ([]byte, error) {
	return syscall.Mmap(fd, 0, length, syscall.PROT_READ, syscall.MAP_SHARED)
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}

func adviseSequential(b []byte) error {
	return syscall.Madvise(b, syscall.MADV_SEQUENTIAL)
}
