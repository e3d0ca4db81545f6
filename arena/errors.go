package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when an allocation does not fit into
	// the remaining capacity. The arena never grows.
	ErrCapacityExceeded = errors.New("arena: capacity exceeded")

	// ErrScopeImbalance is the parent of ErrScopeOverflow and ErrScopeUnderflow.
	ErrScopeImbalance = errors.New("arena: scope imbalance")

	// ErrScopeOverflow is returned by PushScope when MaxScopeDepth scopes are open.
	ErrScopeOverflow = fmt.Errorf("%w: scope stack full", ErrScopeImbalance)

	// ErrScopeUnderflow is returned by PopScope when no scope is open.
	ErrScopeUnderflow = fmt.Errorf("%w: pop without matching push", ErrScopeImbalance)

	// ErrStaleRef is returned when a Ref outlived the scope it was allocated in.
	ErrStaleRef = errors.New("arena: stale reference")

	// ErrClosed is returned after Free.
	ErrClosed = errors.New("arena: closed")

	// ErrInvalidSize is returned for negative sizes and capacities.
	ErrInvalidSize = errors.New("arena: invalid size")

	// ErrInvalidAlignment is returned when alignment is not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")
)

// CapacityError describes a failed allocation.
//
// It matches ErrCapacityExceeded with errors.Is.
type CapacityError struct {
	Requested int
	Offset    int
	Capacity  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("arena: capacity exceeded: requested %d bytes at offset %d of %d",
		e.Requested, e.Offset, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
