package replay

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/models"
	"github.com/hupe1980/kalman/trace"
)

// ErrUnknownModel is returned for a ModelSpec with an unsupported Kind.
var ErrUnknownModel = errors.New("replay: unknown model")

// ModelKind names one of the models in package models.
type ModelKind string

const (
	// Simple tracks a single scalar (models.Simple).
	Simple ModelKind = "simple"
	// ConstantVelocity tracks position and velocity (models.ConstantVelocity).
	ConstantVelocity ModelKind = "cv"
	// Brownian tracks a random walk (models.Brownian).
	Brownian ModelKind = "brownian"
)

// ParseModelKind accepts the names used on the command line.
func ParseModelKind(s string) (ModelKind, error) {
	switch ModelKind(s) {
	case Simple, ConstantVelocity, Brownian:
		return ModelKind(s), nil
	case "constant-velocity":
		return ConstantVelocity, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownModel, s)
	}
}

// ModelSpec selects and configures the model each trace is filtered with.
// The model starts at the first sample of the trace.
type ModelSpec struct {
	Kind                ModelKind
	InitialVariance     float64
	ProcessVariance     float64
	ObservationVariance float64
}

// measureFunc converts one trace sample into a measurement allocated in the
// arena's current scope.
type measureFunc func(a *arena.Arena, values []float32) (kalman.Measurement, error)

// StateDims returns the filter state size for traces with obsDims values per
// sample.
func (s ModelSpec) StateDims(obsDims int) (int, error) {
	switch s.Kind {
	case Simple:
		if obsDims != 1 {
			return 0, fmt.Errorf("%w: simple model needs 1 value per sample, trace has %d", models.ErrInvalidConfig, obsDims)
		}
		return 1, nil
	case ConstantVelocity:
		return 2 * obsDims, nil
	case Brownian:
		return obsDims, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownModel, s.Kind)
	}
}

func (s ModelSpec) build(a *arena.Arena, first trace.Sample) (kalman.Model, measureFunc, error) {
	switch s.Kind {
	case Simple:
		m, err := models.NewSimple(a, first.Time, models.SimpleConfig{
			InitialValue:        first.Values[0],
			InitialVariance:     s.InitialVariance,
			ProcessVariance:     s.ProcessVariance,
			ObservationVariance: s.ObservationVariance,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, func(a *arena.Arena, v []float32) (kalman.Measurement, error) {
			return m.NewMeasurement(a, v[0])
		}, nil

	case ConstantVelocity:
		m, err := models.NewConstantVelocity(a, first.Time, first.Values, models.ConstantVelocityConfig{
			InitialVariance:     s.InitialVariance,
			ProcessVariance:     s.ProcessVariance,
			ObservationVariance: s.ObservationVariance,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, m.NewPositionMeasurement, nil

	case Brownian:
		m, err := models.NewBrownian(a, first.Time, first.Values, models.BrownianConfig{
			InitialVariance:     s.InitialVariance,
			ProcessVariance:     s.ProcessVariance,
			ObservationVariance: s.ObservationVariance,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, m.NewMeasurement, nil

	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownModel, s.Kind)
	}
}
