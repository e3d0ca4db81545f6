package trace

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the framing of a trace or estimate blob.
type Compression int

const (
	// None is plain CSV.
	None Compression = iota
	// Zstd is a zstandard stream (".zst").
	Zstd
	// LZ4 is an LZ4 frame stream (".lz4").
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionFor picks the compression from a blob name's extension.
func CompressionFor(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return Zstd
	case strings.HasSuffix(name, ".lz4"):
		return LZ4
	default:
		return None
	}
}

// Open wraps r in the decompressor matching name. Closing the result releases
// the decompressor but not r.
func Open(r io.Reader, name string) (io.ReadCloser, error) {
	switch CompressionFor(name) {
	case Zstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Create wraps w in the compressor matching name. Close flushes the final
// frame but does not close w.
func Create(w io.Writer, name string) (io.WriteCloser, error) {
	switch CompressionFor(name) {
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
