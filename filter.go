package kalman

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

// Filter is a discrete-time linear Kalman filter.
//
// The state vector and covariance matrix are allocated once, in the arena
// scope that is current when New is called, and are overwritten in place by
// every successful Predict or Update. All intermediates of a call live in a
// scope that is popped before the call returns, so arena usage returns to
// the same offset after every call.
//
// A Filter is not safe for concurrent use, and neither is its arena.
type Filter struct {
	model Model
	a     *arena.Arena
	dims  int
	time  uint64

	state      linalg.Vector
	covariance linalg.Matrix

	logger  *Logger
	metrics MetricsCollector
}

// New creates a filter for model. The model's initial state is copied into
// buffers owned by the filter.
func New(a *arena.Arena, m Model, optFns ...Option) (*Filter, error) {
	o := applyOptions(optFns)

	initial, err := m.InitialState()
	if err != nil {
		return nil, err
	}
	n := initial.State.Len()
	if n == 0 {
		return nil, ErrInvalidModel
	}
	if r, c := initial.Covariance.Dims(); r != n || c != n {
		return nil, mismatch("New", linalg.Shape{Rows: n, Cols: n}, linalg.Shape{Rows: r, Cols: c})
	}

	state, err := linalg.NewVector(a, n)
	if err != nil {
		return nil, translateError(err)
	}
	if err := state.CopyVec(initial.State); err != nil {
		return nil, translateError(err)
	}
	covariance, err := linalg.NewMatrix(a, n, n)
	if err != nil {
		return nil, translateError(err)
	}
	if err := covariance.Copy(initial.Covariance); err != nil {
		return nil, translateError(err)
	}

	return &Filter{
		model:      m,
		a:          a,
		dims:       n,
		time:       initial.Time,
		state:      state,
		covariance: covariance,
		logger:     o.logger.WithDims(n),
		metrics:    o.metricsCollector,
	}, nil
}

// State returns the filter's state vector. The returned view aliases the
// filter's buffer and reflects later Predict and Update calls.
func (f *Filter) State() linalg.Vector { return f.state }

// Covariance returns the filter's covariance matrix, aliasing the filter's buffer.
func (f *Filter) Covariance() linalg.Matrix { return f.covariance }

// Time returns the current filter time in milliseconds.
func (f *Filter) Time() uint64 { return f.time }

// Dims returns the state dimensionality.
func (f *Filter) Dims() int { return f.dims }

// Arena returns the arena holding the filter's buffers.
func (f *Filter) Arena() *arena.Arena { return f.a }

// SetState overwrites the state vector.
func (f *Filter) SetState(v linalg.Vector) error {
	return translateError(f.state.CopyVec(v))
}

// SetCovariance overwrites the covariance matrix.
func (f *Filter) SetCovariance(m linalg.Matrix) error {
	return translateError(f.covariance.Copy(m))
}

// Eye returns an n×n identity matrix allocated in the arena's current scope.
func (f *Filter) Eye(n int) (linalg.Matrix, error) {
	m, err := linalg.Eye(f.a, n)
	return m, translateError(err)
}

// Predict advances the filter to time t (milliseconds) without a measurement:
//
//	x ← T·x
//	P ← T·P·Tᵗ + Q
//
// t before the current time fails with ErrTemporalViolation; t equal to it
// is a no-op. On any error the filter is left unchanged.
func (f *Filter) Predict(t uint64) error {
	start := time.Now()
	from := f.time

	err := f.predict(t)

	f.observe(err)
	f.metrics.RecordPredict(time.Since(start), err)
	f.logger.LogPredict(context.Background(), from, t, err)
	return err
}

func (f *Filter) predict(t uint64) error {
	if t < f.time {
		return ErrTemporalViolation
	}
	if t == f.time {
		return nil
	}
	err := f.a.Scope(func() error {
		x, p, err := f.propagate(t - f.time)
		if err != nil {
			return err
		}
		return f.commit(t, x, p)
	})
	return translateError(err)
}

// Update predicts to time t and corrects the prediction with m:
//
//	r  = z − H·x
//	S  = H·P·Hᵗ + R
//	K  = P·Hᵗ·S⁻¹
//	x' = x + K·r
//	P' = (I − K·H)·P
//
// A singular S fails with ErrSingularMatrix. On any error, including a
// failure after the prediction step, the filter is left unchanged.
func (f *Filter) Update(t uint64, m Measurement) error {
	start := time.Now()

	err := f.update(t, m)

	f.observe(err)
	f.metrics.RecordUpdate(time.Since(start), err)
	f.logger.LogUpdate(context.Background(), t, m.Dims(), err)
	return err
}

func (f *Filter) update(t uint64, m Measurement) error {
	if t < f.time {
		return ErrTemporalViolation
	}
	if err := m.validate(f.dims); err != nil {
		return err
	}

	n, k := f.dims, m.Dims()
	z, h, r := m.Value, m.ObservationModel, m.Covariance

	err := f.a.Scope(func() error {
		x, p, err := f.propagate(t - f.time)
		if err != nil {
			return err
		}

		residual, err := linalg.NewVector(f.a, k)
		if err != nil {
			return err
		}
		if err := residual.MulVec(h, x); err != nil {
			return err
		}
		if err := residual.SubVec(z, residual); err != nil {
			return err
		}

		ht, err := h.T()
		if err != nil {
			return err
		}
		s, err := linalg.NewMatrix(f.a, k, k)
		if err != nil {
			return err
		}
		if err := s.Product(h, p, ht); err != nil {
			return err
		}
		if err := s.Add(s, r); err != nil {
			return err
		}
		// S is scratch, so it is factored in place.
		lu, err := linalg.Decompose(s)
		if err != nil {
			return err
		}
		sInv, err := linalg.NewMatrix(f.a, k, k)
		if err != nil {
			return err
		}
		if err := lu.InverseTo(sInv); err != nil {
			return err
		}

		gain, err := linalg.NewMatrix(f.a, n, k)
		if err != nil {
			return err
		}
		if err := gain.Product(p, ht, sInv); err != nil {
			return err
		}

		nextState, err := linalg.NewVector(f.a, n)
		if err != nil {
			return err
		}
		if err := nextState.MulVec(gain, residual); err != nil {
			return err
		}
		if err := nextState.AddVec(x, nextState); err != nil {
			return err
		}

		nextCov, err := linalg.NewMatrix(f.a, n, n)
		if err != nil {
			return err
		}
		err = f.a.Scope(func() error {
			kh, err := linalg.NewMatrix(f.a, n, n)
			if err != nil {
				return err
			}
			if err := kh.Mul(gain, h); err != nil {
				return err
			}
			eye, err := linalg.Eye(f.a, n)
			if err != nil {
				return err
			}
			if err := eye.Sub(eye, kh); err != nil {
				return err
			}
			return nextCov.Mul(eye, p)
		})
		if err != nil {
			return err
		}

		return f.commit(t, nextState, nextCov)
	})
	return translateError(err)
}

// propagate computes the prediction for dt into the current scope. For dt
// == 0 it returns the filter's own buffers.
func (f *Filter) propagate(dt uint64) (linalg.Vector, linalg.Matrix, error) {
	if dt == 0 {
		return f.state, f.covariance, nil
	}
	n := f.dims
	shape := linalg.Shape{Rows: n, Cols: n}

	tr, err := f.model.Transition(f.a, dt)
	if err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	if r, c := tr.Dims(); r != n || c != n {
		return linalg.Vector{}, linalg.Matrix{}, mismatch("Transition", shape, linalg.Shape{Rows: r, Cols: c})
	}
	q, err := f.model.CovarianceTransition(f.a, dt)
	if err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	if r, c := q.Dims(); r != n || c != n {
		return linalg.Vector{}, linalg.Matrix{}, mismatch("CovarianceTransition", shape, linalg.Shape{Rows: r, Cols: c})
	}

	x, err := linalg.NewVector(f.a, n)
	if err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	if err := x.MulVec(tr, f.state); err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}

	tt, err := tr.T()
	if err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	p, err := linalg.NewMatrix(f.a, n, n)
	if err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	if err := p.Product(tr, f.covariance, tt); err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	if err := p.Add(p, q); err != nil {
		return linalg.Vector{}, linalg.Matrix{}, err
	}
	return x, p, nil
}

// commit stores x and p as the filter state at time t. Both are fully
// computed before commit is called; x and p may be the filter's own buffers.
func (f *Filter) commit(t uint64, x linalg.Vector, p linalg.Matrix) error {
	if err := f.state.CopyVec(x); err != nil {
		return err
	}
	if err := f.covariance.Copy(p); err != nil {
		return err
	}
	f.time = t
	return nil
}

func (f *Filter) observe(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrTemporalViolation):
		f.metrics.RecordReject(RejectTemporal)
	case errors.Is(err, ErrSingularMatrix):
		f.metrics.RecordReject(RejectSingular)
	}
}
