package models

import (
	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// ConstantVelocityConfig configures a ConstantVelocity model.
type ConstantVelocityConfig struct {
	// InitialVariance is the initial variance of every state component.
	InitialVariance float64
	// ProcessVariance is the process noise added per second to every state component.
	ProcessVariance float64
	// ObservationVariance is the noise of position measurements.
	ObservationVariance float64
}

// ConstantVelocity models motion at constant velocity in Dims dimensions.
//
// The state is [position(Dims), velocity(Dims)] with velocity in units per
// second. Over dt milliseconds
//
//	T = I + dt_s·[0 I; 0 0]
//	Q = dt_s·ProcessVariance·I
type ConstantVelocity struct {
	dims    int
	initial kalman.State
	cfg     ConstantVelocityConfig
}

var _ kalman.Model = (*ConstantVelocity)(nil)

// NewConstantVelocity creates a model starting at time t (ms) at position with
// zero velocity.
func NewConstantVelocity(a *arena.Arena, t uint64, position []float32, cfg ConstantVelocityConfig) (*ConstantVelocity, error) {
	dims := len(position)
	if dims == 0 {
		return nil, invalid("initial position must not be empty")
	}
	if err := checkVariance("InitialVariance", cfg.InitialVariance); err != nil {
		return nil, err
	}
	if err := checkVariance("ProcessVariance", cfg.ProcessVariance); err != nil {
		return nil, err
	}
	if err := checkVariance("ObservationVariance", cfg.ObservationVariance); err != nil {
		return nil, err
	}

	n := 2 * dims
	x, err := linalg.NewVector(a, n)
	if err != nil {
		return nil, err
	}
	for i, p := range position {
		x.SetVec(i, p)
	}
	p, err := diag(a, n, float32(cfg.InitialVariance))
	if err != nil {
		return nil, err
	}

	return &ConstantVelocity{
		dims:    dims,
		initial: kalman.State{Time: t, State: x, Covariance: p},
		cfg:     cfg,
	}, nil
}

// Dims returns the number of spatial dimensions. The state has twice as many.
func (m *ConstantVelocity) Dims() int { return m.dims }

// InitialState implements kalman.Model.
func (m *ConstantVelocity) InitialState() (kalman.State, error) {
	return m.initial, nil
}

// Transition implements kalman.Model.
func (m *ConstantVelocity) Transition(a *arena.Arena, dt uint64) (linalg.Matrix, error) {
	t, err := diag(a, 2*m.dims, 1)
	if err != nil {
		return linalg.Matrix{}, err
	}
	dts := seconds(dt)
	for i := range m.dims {
		t.Set(i, m.dims+i, dts)
	}
	return t, nil
}

// CovarianceTransition implements kalman.Model.
func (m *ConstantVelocity) CovarianceTransition(a *arena.Arena, dt uint64) (linalg.Matrix, error) {
	return diag(a, 2*m.dims, seconds(dt)*float32(m.cfg.ProcessVariance))
}

// NewPositionMeasurement allocates a measurement of position in a's current
// scope, with ObservationVariance on the diagonal of R.
func (m *ConstantVelocity) NewPositionMeasurement(a *arena.Arena, position []float32) (kalman.Measurement, error) {
	if len(position) != m.dims {
		return kalman.Measurement{}, &linalg.ErrDimensionMismatch{
			Op:       "NewPositionMeasurement",
			Expected: linalg.Shape{Rows: m.dims, Cols: 1},
			Actual:   linalg.Shape{Rows: len(position), Cols: 1},
		}
	}
	z, err := linalg.VectorFrom(a, position)
	if err != nil {
		return kalman.Measurement{}, err
	}
	r, err := diag(a, m.dims, float32(m.cfg.ObservationVariance))
	if err != nil {
		return kalman.Measurement{}, err
	}
	h, err := identityObservation(a, m.dims, 2*m.dims)
	if err != nil {
		return kalman.Measurement{}, err
	}
	return kalman.Measurement{Value: z, Covariance: r, ObservationModel: h}, nil
}

// Position returns the position part of state as a view.
func (m *ConstantVelocity) Position(state linalg.Vector) (linalg.Vector, error) {
	if err := m.checkState(state); err != nil {
		return linalg.Vector{}, err
	}
	return state.SliceVec(0, m.dims), nil
}

// Velocity returns the velocity part of state as a view.
func (m *ConstantVelocity) Velocity(state linalg.Vector) (linalg.Vector, error) {
	if err := m.checkState(state); err != nil {
		return linalg.Vector{}, err
	}
	return state.SliceVec(m.dims, 2*m.dims), nil
}

func (m *ConstantVelocity) checkState(state linalg.Vector) error {
	if state.Len() != 2*m.dims {
		return &linalg.ErrDimensionMismatch{
			Op:       "ConstantVelocity",
			Expected: linalg.Shape{Rows: 2 * m.dims, Cols: 1},
			Actual:   linalg.Shape{Rows: state.Len(), Cols: 1},
		}
	}
	return nil
}
