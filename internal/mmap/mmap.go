package mmap

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by Advise after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for a non-positive anonymous size or a file
	// too large to address.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// Advice tells the kernel how the pages of a mapping will be touched.
type Advice int

const (
	// Normal clears earlier advice.
	Normal Advice = iota
	// Sequential lets the kernel read ahead aggressively and drop pages
	// soon after they were read. Trace blobs are consumed this way.
	Sequential
)

// Mapping owns a region of memory obtained from the operating system.
type Mapping struct {
	data   []byte
	unmap  func([]byte) error
	closed atomic.Bool
}

// Open maps the file at path read-only. An empty file yields an empty
// mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return &Mapping{}, nil
	}
	if fi.Size() > math.MaxInt {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrInvalidSize, path, fi.Size())
	}

	data, unmap, err := mapFile(f, int(fi.Size()))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Anonymous returns size bytes of zeroed, private, read-write memory that
// lives outside the Go heap until Close.
func Anonymous(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, unmap, err := mapAnonymous(size)
	if err != nil {
		return nil, fmt.Errorf("mmap: anonymous %d bytes: %w", size, err)
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped memory, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the mapping's size in bytes.
func (m *Mapping) Len() int { return len(m.data) }

// Advise passes a hint to the kernel. Hints are best effort; a platform that
// cannot honor one returns nil.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, a)
}

// Close unmaps the memory. Further calls are no-ops.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}
