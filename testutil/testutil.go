package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// NormFloat32 returns a standard normal sample.
func (r *RNG) NormFloat32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float32(r.rand.NormFloat64())
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Matrix returns a row-major r×c matrix with entries in [-1, 1).
func (r *RNG) Matrix(rows, cols int) []float32 {
	m := make([]float32, rows*cols)
	r.FillUniformRange(m, -1, 1)
	return m
}

// WellConditioned returns a row-major n×n matrix with entries in [-1, 1)
// plus n on the diagonal. Strict diagonal dominance keeps it nonsingular
// with a small condition number.
func (r *RNG) WellConditioned(n int) []float32 {
	m := r.Matrix(n, n)
	for i := range n {
		m[i*n+i] += float32(n)
	}
	return m
}

// SPD returns a symmetric positive definite n×n matrix (AᵀA + n·I).
func (r *RNG) SPD(n int) []float32 {
	a := r.Matrix(n, n)
	out := make([]float32, n*n)
	for i := range n {
		for j := range n {
			var s float32
			for k := range n {
				s += a[k*n+i] * a[k*n+j]
			}
			out[i*n+j] = s
		}
		out[i*n+i] += float32(n)
	}
	return out
}

// NoisySignal samples a constant-velocity trajectory with Gaussian
// observation noise. times are milliseconds starting at 0 with step stepMs;
// values[k] holds dims coordinates.
func (r *RNG) NoisySignal(samples, dims int, stepMs uint64, velocity, noise float32) (times []uint64, values [][]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	times = make([]uint64, samples)
	values = make([][]float32, samples)
	data := make([]float32, samples*dims)
	for k := range samples {
		times[k] = uint64(k) * stepMs //nolint:gosec // k >= 0
		sec := float32(times[k]) / 1000
		vals := data[k*dims : (k+1)*dims]
		for d := range vals {
			vals[d] = velocity*sec + noise*float32(r.rand.NormFloat64())
		}
		values[k] = vals
	}
	return times, values
}
