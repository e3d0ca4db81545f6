// Package linalg implements dense float32 vectors and matrices whose storage
// lives in an arena, plus LU decomposition with partial pivoting.
//
// Vector and Matrix are small value types that borrow arena memory. Every
// constructor allocates in the arena's current scope, so a result stays
// valid exactly as long as that scope stays open; Valid reports whether it
// still is. Operations on stale operands return arena.ErrStaleRef.
//
// # Aliasing
//
// Binary operations write into their receiver, which may share storage with
// one or both operands:
//
//	x.AddVec(x, y)   // fine
//	m.Mul(m, n)      // fine: staged through a scoped temporary
//
// Results are staged in a pushed arena scope whenever the receiver overlaps
// an operand. Products into a distinct destination are written directly.
//
// # Numerics
//
// All arithmetic is float32 with ordinary IEEE-754 propagation of NaN and
// Inf. LU treats a pivot as zero only when it is exactly zero; LU.MinPivot
// exposes the smallest pivot for callers that want a tolerance.
package linalg
