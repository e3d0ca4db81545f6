package models

import (
	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// BrownianConfig configures a Brownian model.
type BrownianConfig struct {
	InitialVariance     float64
	ProcessVariance     float64
	ObservationVariance float64
}

// Brownian models a random walk: T = I, Q = dt_s·ProcessVariance·I.
type Brownian struct {
	dims    int
	initial kalman.State
	cfg     BrownianConfig
}

var _ kalman.Model = (*Brownian)(nil)

// NewBrownian creates a random-walk model starting at time t (ms) at initial.
func NewBrownian(a *arena.Arena, t uint64, initial []float32, cfg BrownianConfig) (*Brownian, error) {
	dims := len(initial)
	if dims == 0 {
		return nil, invalid("initial value must not be empty")
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

	x, err := linalg.VectorFrom(a, initial)
	if err != nil {
		return nil, err
	}
	p, err := diag(a, dims, float32(cfg.InitialVariance))
	if err != nil {
		return nil, err
	}
	return &Brownian{
		dims:    dims,
		initial: kalman.State{Time: t, State: x, Covariance: p},
		cfg:     cfg,
	}, nil
}

// Dims returns the state dimensionality.
func (m *Brownian) Dims() int { return m.dims }

// InitialState implements kalman.Model.
func (m *Brownian) InitialState() (kalman.State, error) {
	return m.initial, nil
}

// Transition implements kalman.Model.
func (m *Brownian) Transition(a *arena.Arena, _ uint64) (linalg.Matrix, error) {
	return diag(a, m.dims, 1)
}

// CovarianceTransition implements kalman.Model.
func (m *Brownian) CovarianceTransition(a *arena.Arena, dt uint64) (linalg.Matrix, error) {
	return diag(a, m.dims, seconds(dt)*float32(m.cfg.ProcessVariance))
}

// NewMeasurement allocates a direct observation of all state components.
func (m *Brownian) NewMeasurement(a *arena.Arena, values []float32) (kalman.Measurement, error) {
	if len(values) != m.dims {
		return kalman.Measurement{}, &linalg.ErrDimensionMismatch{
			Op:       "NewMeasurement",
			Expected: linalg.Shape{Rows: m.dims, Cols: 1},
			Actual:   linalg.Shape{Rows: len(values), Cols: 1},
		}
	}
	return directMeasurement(a, values, m.dims, float32(m.cfg.ObservationVariance))
}

// Value returns state as a view after checking its dimension and liveness.
func (m *Brownian) Value(state linalg.Vector) (linalg.Vector, error) {
	if state.Len() != m.dims {
		return linalg.Vector{}, &linalg.ErrDimensionMismatch{
			Op:       "Brownian",
			Expected: linalg.Shape{Rows: m.dims, Cols: 1},
			Actual:   linalg.Shape{Rows: state.Len(), Cols: 1},
		}
	}
	if !state.Valid() {
		return linalg.Vector{}, arena.ErrStaleRef
	}
	return state.SliceVec(0, m.dims), nil
}
