// Package resource shares limits between concurrent replays.
//
// A Controller hands out three budgets:
//
//   - Memory: arena bytes. Arenas reserve their full capacity on creation
//     (arena.WithMemoryAcquirer) and return it on Free.
//   - Slots: how many traces are replayed at the same time.
//   - I/O: a token bucket over trace reads and estimate writes.
//
// All methods are safe for concurrent use, and a nil *Controller imposes no
// limits.
package resource
