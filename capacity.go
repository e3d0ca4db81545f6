package kalman

import "unsafe"

// ScopeDepth is the number of arena scope levels Predict and Update push on
// top of the caller's. A caller may hold at most arena.MaxScopeDepth -
// ScopeDepth open scopes around a filter call.
const ScopeDepth = 2

// arenaSlack covers alignment padding between allocations.
const arenaSlack = 64

// EstimateArenaSize returns an upper bound, in bytes, on the arena capacity
// needed to run a filter with stateDims state dimensions and obsDims
// observation dimensions. It covers the model's initial state, the filter's
// persistent buffers, one measurement, and the deepest Update, assuming the
// model allocates only T and Q per step.
//
// The bound counts every transient as if none were released, so it is
// loose by roughly the size of the staging buffers.
func EstimateArenaSize(stateDims, obsDims int) int {
	n, k := stateDims, obsDims
	if n <= 0 || k <= 0 {
		return 0
	}

	floats := 0
	floats += 2 * (n + n*n)   // model initial state, filter state
	floats += k + k*k + k*n   // measurement z, R, H
	floats += 5*n*n + n       // T, Q, Tᵗ, T·P, P⁻ and x⁻
	floats += k + n*k + k*k   // residual, Hᵗ, S
	floats += k * n           // H·P
	floats += 3*k*k + k       // S⁻¹, identity, solve buffer, scratch column
	floats += n*k + n*k       // K, P·Hᵗ
	floats += n + n*n         // x', P'
	floats += 2 * n * n       // K·H, I − K·H

	pivots := k * int(unsafe.Sizeof(int(0)))
	return floats*int(unsafe.Sizeof(float32(0))) + pivots + arenaSlack
}
