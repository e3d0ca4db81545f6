package arena

import "fmt"

// Ref is a handle to an arena allocation.
//
// The zero Ref is never valid. Refs are plain values and may be copied freely;
// validity is decided by the arena (see Arena.Valid).
type Ref struct {
	off   int
	size  int
	depth uint8
	stamp uint64
}

// Offset returns the byte offset of the allocation within the arena.
func (r Ref) Offset() int { return r.off }

// Size returns the allocation size in bytes.
func (r Ref) Size() int { return r.size }

// Depth returns the scope level the allocation was made in (0 is the root).
func (r Ref) Depth() int { return int(r.depth) }

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool { return r.stamp == 0 }

func (r Ref) String() string {
	return fmt.Sprintf("Ref{off: %d, size: %d, depth: %d}", r.off, r.size, r.depth)
}
