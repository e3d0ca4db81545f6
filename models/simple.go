package models

import (
	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// SimpleConfig configures a Simple model.
type SimpleConfig struct {
	InitialValue        float32
	InitialVariance     float64
	ProcessVariance     float64
	ObservationVariance float64
}

// Simple models a single scalar that stays put between observations,
// perturbed by a fixed ProcessVariance per step regardless of its length.
type Simple struct {
	initial kalman.State
	cfg     SimpleConfig
}

var _ kalman.Model = (*Simple)(nil)

// NewSimple creates a scalar model starting at time t (ms).
func NewSimple(a *arena.Arena, t uint64, cfg SimpleConfig) (*Simple, error) {
	if err := checkVariance("InitialVariance", cfg.InitialVariance); err != nil {
		return nil, err
	}
	if err := checkVariance("ProcessVariance", cfg.ProcessVariance); err != nil {
		return nil, err
	}
	if err := checkVariance("ObservationVariance", cfg.ObservationVariance); err != nil {
		return nil, err
	}

	x, err := linalg.VectorFrom(a, []float32{cfg.InitialValue})
	if err != nil {
		return nil, err
	}
	p, err := diag(a, 1, float32(cfg.InitialVariance))
	if err != nil {
		return nil, err
	}
	return &Simple{
		initial: kalman.State{Time: t, State: x, Covariance: p},
		cfg:     cfg,
	}, nil
}

// InitialState implements kalman.Model.
func (m *Simple) InitialState() (kalman.State, error) {
	return m.initial, nil
}

// Transition implements kalman.Model.
func (m *Simple) Transition(a *arena.Arena, _ uint64) (linalg.Matrix, error) {
	return diag(a, 1, 1)
}

// CovarianceTransition implements kalman.Model.
func (m *Simple) CovarianceTransition(a *arena.Arena, dt uint64) (linalg.Matrix, error) {
	var q float32
	if dt > 0 {
		q = float32(m.cfg.ProcessVariance)
	}
	return diag(a, 1, q)
}

// NewMeasurement allocates an observation of value in a's current scope.
func (m *Simple) NewMeasurement(a *arena.Arena, value float32) (kalman.Measurement, error) {
	return directMeasurement(a, []float32{value}, 1, float32(m.cfg.ObservationVariance))
}

// Value returns the scalar held by state.
func (m *Simple) Value(state linalg.Vector) float32 {
	return state.AtVec(0)
}

// directMeasurement observes the first len(values) of n state components
// with independent noise variance.
func directMeasurement(a *arena.Arena, values []float32, n int, variance float32) (kalman.Measurement, error) {
	k := len(values)
	z, err := linalg.VectorFrom(a, values)
	if err != nil {
		return kalman.Measurement{}, err
	}
	r, err := diag(a, k, variance)
	if err != nil {
		return kalman.Measurement{}, err
	}
	h, err := identityObservation(a, k, n)
	if err != nil {
		return kalman.Measurement{}, err
	}
	return kalman.Measurement{Value: z, Covariance: r, ObservationModel: h}, nil
}
