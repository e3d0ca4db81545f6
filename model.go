package kalman

import (
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// State is a filter state at a point in time.
type State struct {
	// Time is the timestamp in milliseconds.
	Time uint64
	// State is the state estimate x.
	State linalg.Vector
	// Covariance is the estimate covariance P.
	Covariance linalg.Matrix
}

// Model describes how a linear process evolves.
//
// Transition and CovarianceTransition allocate their results in the current
// scope of the given arena; the filter calls them inside a scope it releases
// when the step completes. dt is the elapsed time in milliseconds and is
// always positive.
type Model interface {
	// InitialState returns the state the filter starts from. The filter
	// copies it, so the model may keep ownership.
	InitialState() (State, error)

	// Transition returns the state transition matrix T for dt.
	Transition(a *arena.Arena, dt uint64) (linalg.Matrix, error)

	// CovarianceTransition returns the process noise Q injected over dt.
	CovarianceTransition(a *arena.Arena, dt uint64) (linalg.Matrix, error)
}

// Measurement is an observation z = H·x + v with v ~ N(0, R).
type Measurement struct {
	// Value is the observed vector z.
	Value linalg.Vector
	// Covariance is the observation noise R.
	Covariance linalg.Matrix
	// ObservationModel is H, mapping state space into observation space.
	ObservationModel linalg.Matrix
}

// Dims returns the observation dimensionality.
func (m Measurement) Dims() int { return m.Value.Len() }

func (m Measurement) validate(stateDims int) error {
	k := m.Value.Len()
	if r, c := m.ObservationModel.Dims(); r != k || c != stateDims {
		return mismatch("Update", linalg.Shape{Rows: k, Cols: stateDims}, linalg.Shape{Rows: r, Cols: c})
	}
	if r, c := m.Covariance.Dims(); r != k || c != k {
		return mismatch("Update", linalg.Shape{Rows: k, Cols: k}, linalg.Shape{Rows: r, Cols: c})
	}
	return nil
}
