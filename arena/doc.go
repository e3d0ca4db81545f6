// Package arena provides a fixed-capacity bump allocator with scoped release.
//
// All vector and matrix storage of a Kalman filter is drawn from one Arena.
// Allocation moves a single offset forward; PushScope records the offset and
// PopScope rewinds to it, releasing everything allocated in between at once.
//
// # Handles
//
// Alloc returns a Ref rather than a pointer. A Ref remembers the scope level
// it was allocated in and the stamp that level carried at the time. Popping
// or resetting past that level changes the stamp, so Valid reports stale
// handles instead of silently aliasing reused memory:
//
//	a, _ := arena.New(64 << 10)
//	defer a.Free()
//
//	_ = a.PushScope()
//	ref, _ := a.Alloc(16, 8)
//	_ = a.PopScope()
//	a.Valid(ref) // false
//
// # Backing Memory
//
// New maps anonymous memory off the Go heap (see WithHeap for a GC-managed
// slice). NewFromBytes wraps caller-supplied memory for targets that manage
// their own buffers. With WithMemoryAcquirer the full capacity is reserved
// from a shared budget up front and returned on Free.
//
// # Poisoning
//
// When poisoning is enabled (WithPoison, or the kalmandebug build tag) popped
// and reset ranges are overwritten with PoisonByte to surface use-after-pop.
//
// # Concurrency Model
//
// An Arena is not safe for concurrent use. The offset and the scope stack are
// plain fields; callers that share an arena must serialize access.
package arena
