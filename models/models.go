// Package models provides ready-made process models for kalman.Filter.
//
// Each model allocates its initial state in the arena passed to its
// constructor; the state must outlive the filter built from the model.
// Times are milliseconds; velocities and process variances are per second.
package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// ErrInvalidConfig is returned when a model configuration is unusable.
var ErrInvalidConfig = errors.New("models: invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func checkVariance(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid("%s must be a finite non-negative number, got %v", name, v)
	}
	return nil
}

// seconds converts a millisecond interval to seconds.
func seconds(dt uint64) float32 {
	return float32(dt) * 0.001
}

// diag allocates an n×n matrix with v on the diagonal.
func diag(a *arena.Arena, n int, v float32) (linalg.Matrix, error) {
	m, err := linalg.NewMatrix(a, n, n)
	if err != nil {
		return linalg.Matrix{}, err
	}
	for i := range n {
		m.Set(i, i, v)
	}
	return m, nil
}

// identityObservation allocates the k×n observation model that selects the
// first k state components.
func identityObservation(a *arena.Arena, k, n int) (linalg.Matrix, error) {
	h, err := linalg.NewMatrix(a, k, n)
	if err != nil {
		return linalg.Matrix{}, err
	}
	for i := range k {
		h.Set(i, i, 1)
	}
	return h, nil
}
