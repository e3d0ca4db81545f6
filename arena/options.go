package arena

import (
	"context"
	"time"
)

// MemoryAcquirer reserves memory from a shared budget.
// resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer reserves the arena capacity from acquirer on creation
// and releases it on Free.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithAcquireTimeout bounds how long New waits for the memory acquirer.
// Default: 100ms.
func WithAcquireTimeout(d time.Duration) Option {
	return func(a *Arena) {
		a.acquireTimeout = d
	}
}

// WithPoison enables or disables overwriting released ranges with PoisonByte.
// The default is enabled in builds with the kalmandebug tag.
func WithPoison(enabled bool) Option {
	return func(a *Arena) {
		a.poison = enabled
	}
}

// WithHeap backs the arena with a Go byte slice instead of an anonymous mapping.
func WithHeap() Option {
	return func(a *Arena) {
		a.backing = BackingHeap
	}
}
