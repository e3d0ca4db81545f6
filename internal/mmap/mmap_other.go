//go:build !unix

package mmap

import (
	"io"
	"os"
)

// Without mmap(2) both kinds of mapping are heap slices. make zeroes memory,
// matching an anonymous mapping.

func mapFile(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

func mapAnonymous(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), nil, nil
}

func advise([]byte, Advice) error { return nil }
