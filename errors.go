package kalman

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

var (
	// ErrTemporalViolation is returned when Predict or Update is asked to
	// move the filter to a time before its current time.
	ErrTemporalViolation = errors.New("kalman: time before current filter time")

	// ErrSingularMatrix is returned when the innovation covariance cannot be
	// inverted. It also matches linalg.ErrSingular.
	ErrSingularMatrix = errors.New("kalman: singular innovation covariance")

	// ErrInvalidModel is returned when a model produces an unusable initial state.
	ErrInvalidModel = errors.New("kalman: invalid model")
)

// Arena failures, re-exported so callers can match them without importing arena.
var (
	ErrCapacityExceeded = arena.ErrCapacityExceeded
	ErrScopeImbalance   = arena.ErrScopeImbalance
	ErrStaleRef         = arena.ErrStaleRef
	ErrClosed           = arena.ErrClosed
)

// ErrDimensionMismatch indicates operands whose shapes disagree, for
// example a measurement whose value length differs from its observation
// model's row count.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Op       string
	Expected linalg.Shape
	Actual   linalg.Shape
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("kalman: %s: dimension mismatch: expected %s, got %s", e.Op, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func mismatch(op string, expected, actual linalg.Shape) error {
	return &ErrDimensionMismatch{Op: op, Expected: expected, Actual: actual}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrSingularMatrix) || errors.Is(err, ErrTemporalViolation) {
		return err
	}
	if errors.Is(err, linalg.ErrSingular) {
		return fmt.Errorf("%w: %w", ErrSingularMatrix, err)
	}

	var dm *linalg.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Op: dm.Op, Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	return err
}

// isRejection reports whether err is a recoverable per-call failure that
// leaves the filter unchanged.
func isRejection(err error) bool {
	return errors.Is(err, ErrTemporalViolation) || errors.Is(err, ErrSingularMatrix)
}
