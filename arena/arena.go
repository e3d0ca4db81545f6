package arena

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/hupe1980/kalman/internal/mmap"
)

const (
	// MaxScopeDepth is the maximum number of simultaneously open scopes.
	MaxScopeDepth = 8
	// DefaultAlignment is used when Alloc is called with align <= 0.
	DefaultAlignment = 8
	// PoisonByte overwrites released memory when poisoning is enabled.
	PoisonByte = 0xCD

	defaultAcquireTimeout = 100 * time.Millisecond
)

// Backing identifies where the arena memory comes from.
type Backing uint8

const (
	// BackingMmap is an anonymous off-heap mapping owned by the arena.
	BackingMmap Backing = iota
	// BackingHeap is a Go byte slice owned by the arena.
	BackingHeap
	// BackingExternal is caller-supplied memory (NewFromBytes).
	BackingExternal
)

func (b Backing) String() string {
	switch b {
	case BackingMmap:
		return "mmap"
	case BackingHeap:
		return "heap"
	case BackingExternal:
		return "external"
	default:
		return fmt.Sprintf("Backing(%d)", uint8(b))
	}
}

// Arena is a fixed-capacity bump allocator with a bounded scope stack.
type Arena struct {
	buf     []byte
	mapping *mmap.Mapping // nil unless backing == BackingMmap
	backing Backing

	offset int
	peak   int
	depth  int
	marks  [MaxScopeDepth]int

	// stamps[d] identifies the current incarnation of scope level d.
	// A Ref allocated at level d is valid while stamps[d] is unchanged.
	stamps    [MaxScopeDepth + 1]uint64
	nextStamp uint64

	poison bool
	closed bool

	acquirer       MemoryAcquirer
	acquireTimeout time.Duration
	reserved       int64

	stats counters
}

// New creates an arena with capacity bytes of zeroed memory.
func New(capacity int, opts ...Option) (*Arena, error) {
	if capacity < 0 {
		return nil, ErrInvalidSize
	}

	a := newArena(opts)

	if a.acquirer != nil && capacity > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), a.acquireTimeout)
		defer cancel()
		if err := a.acquirer.AcquireMemory(ctx, int64(capacity)); err != nil {
			return nil, fmt.Errorf("arena: reserve %d bytes: %w", capacity, err)
		}
		a.reserved = int64(capacity)
	}

	switch {
	case capacity == 0:
		a.buf = nil
	case a.backing == BackingHeap:
		a.buf = make([]byte, capacity)
	default:
		mapping, err := mmap.Anonymous(capacity)
		if err != nil {
			a.release()
			return nil, fmt.Errorf("arena: %w", err)
		}
		a.mapping = mapping
		a.buf = mapping.Bytes()
	}

	return a, nil
}

// NewFromBytes creates an arena over caller-supplied memory.
// The arena never frees buf; Free only invalidates the arena.
func NewFromBytes(buf []byte, opts ...Option) *Arena {
	a := newArena(opts)
	a.acquirer = nil
	a.backing = BackingExternal
	a.buf = buf
	return a
}

func newArena(opts []Option) *Arena {
	a := &Arena{
		backing:        BackingMmap,
		poison:         defaultPoison,
		acquireTimeout: defaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.stamps[0] = a.freshStamp()
	return a
}

// freshStamp never returns zero, which marks the zero Ref. A 64-bit counter
// does not wrap within the life of an arena.
func (a *Arena) freshStamp() uint64 {
	a.nextStamp++
	return a.nextStamp
}

// Alloc reserves size zeroed bytes aligned to align and returns a handle.
// On failure the offset is unchanged.
func (a *Arena) Alloc(size, align int) (Ref, error) {
	if a.closed {
		return Ref{}, ErrClosed
	}
	if size < 0 {
		return Ref{}, ErrInvalidSize
	}
	if align <= 0 {
		align = DefaultAlignment
	}
	if align&(align-1) != 0 {
		return Ref{}, ErrInvalidAlignment
	}

	start := a.alignedOffset(align)
	if start > len(a.buf) || size > len(a.buf)-start {
		a.stats.failedAllocs++
		return Ref{}, &CapacityError{Requested: size, Offset: a.offset, Capacity: len(a.buf)}
	}

	end := start + size
	clear(a.buf[start:end])

	a.offset = end
	if end > a.peak {
		a.peak = end
	}
	a.stats.allocs++
	a.stats.bytes += uint64(end - start)

	return Ref{
		off:   start,
		size:  size,
		depth: uint8(a.depth), //nolint:gosec // depth <= MaxScopeDepth
		stamp: a.stamps[a.depth],
	}, nil
}

// alignedOffset aligns the absolute address, not just the offset, so that
// caller-supplied buffers with arbitrary base addresses stay correct.
func (a *Arena) alignedOffset(align int) int {
	if len(a.buf) == 0 {
		return a.offset
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf))) //nolint:gosec // address arithmetic only
	addr := base + uintptr(a.offset)                         //nolint:gosec // offset >= 0
	mask := uintptr(align - 1)                               //nolint:gosec // align > 0
	aligned := (addr + mask) &^ mask
	return a.offset + int(aligned-addr) //nolint:gosec // padding < align
}

// Valid reports whether ref still refers to live memory.
func (a *Arena) Valid(ref Ref) bool {
	if a.closed || ref.stamp == 0 {
		return false
	}
	d := int(ref.depth)
	return d <= a.depth && a.stamps[d] == ref.stamp
}

// Check returns ErrStaleRef (or ErrClosed) when ref is no longer valid.
func (a *Arena) Check(ref Ref) error {
	if a.closed {
		return ErrClosed
	}
	if !a.Valid(ref) {
		return fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	return nil
}

// Bytes resolves ref to its byte slice. It returns nil for stale refs.
func (a *Arena) Bytes(ref Ref) []byte {
	if !a.Valid(ref) {
		return nil
	}
	return a.buf[ref.off : ref.off+ref.size : ref.off+ref.size]
}

// PushScope opens a new scope at the current offset.
func (a *Arena) PushScope() error {
	if a.closed {
		return ErrClosed
	}
	if a.depth == MaxScopeDepth {
		return ErrScopeOverflow
	}
	a.marks[a.depth] = a.offset
	a.depth++
	a.stamps[a.depth] = a.freshStamp()
	a.stats.pushes++
	return nil
}

// PopScope releases everything allocated since the matching PushScope.
func (a *Arena) PopScope() error {
	if a.closed {
		return ErrClosed
	}
	if a.depth == 0 {
		return ErrScopeUnderflow
	}
	a.stamps[a.depth] = 0
	a.depth--
	mark := a.marks[a.depth]
	if a.poison {
		fillPoison(a.buf[mark:a.offset])
	}
	a.offset = mark
	a.stats.pops++
	return nil
}

// Scope runs fn inside a pushed scope and pops it afterwards, even if fn fails.
func (a *Arena) Scope(fn func() error) (err error) {
	if err := a.PushScope(); err != nil {
		return err
	}
	defer func() {
		if perr := a.PopScope(); perr != nil {
			err = errors.Join(err, perr)
		}
	}()
	return fn()
}

// Reset rewinds the arena to empty and discards all scopes.
// Every Ref handed out before Reset becomes stale.
func (a *Arena) Reset() {
	if a.closed {
		return
	}
	if a.poison {
		fillPoison(a.buf[:a.offset])
	}
	for d := 1; d <= a.depth; d++ {
		a.stamps[d] = 0
	}
	a.depth = 0
	a.offset = 0
	a.stamps[0] = a.freshStamp()
	a.stats.resets++
}

// Free releases the backing memory and the memory reservation.
// The arena cannot be used afterwards. Free is idempotent.
func (a *Arena) Free() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.buf = nil
	a.depth = 0
	a.offset = 0

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	a.release()
	return err
}

func (a *Arena) release() {
	if a.acquirer != nil && a.reserved > 0 {
		a.acquirer.ReleaseMemory(a.reserved)
		a.reserved = 0
	}
}

// Offset returns the current bump offset in bytes.
func (a *Arena) Offset() int { return a.offset }

// Peak returns the highest offset ever reached.
func (a *Arena) Peak() int { return a.peak }

// Capacity returns the total capacity in bytes.
func (a *Arena) Capacity() int { return len(a.buf) }

// Available returns the number of unallocated bytes.
func (a *Arena) Available() int { return len(a.buf) - a.offset }

// Depth returns the number of open scopes.
func (a *Arena) Depth() int { return a.depth }

// Closed reports whether Free has been called.
func (a *Arena) Closed() bool { return a.closed }

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{backing: %s, capacity: %d, offset: %d, peak: %d, depth: %d, allocs: %d}",
		a.backing, len(a.buf), a.offset, a.peak, a.depth, a.stats.allocs,
	)
}

func fillPoison(b []byte) {
	for i := range b {
		b[i] = PoisonByte
	}
}
