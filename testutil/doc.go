// Package testutil provides deterministic random data for tests.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	a := rng.WellConditioned(4)       // row-major 4x4, safely invertible
//	times, vals := rng.NoisySignal(100, 2, 50, 1, 0.1)
package testutil
