// Package kalman provides a discrete-time linear Kalman filter whose working
// memory comes from a fixed-size arena.
//
// A Filter owns exactly two buffers, the state vector and its covariance,
// allocated once when the filter is created. Every Predict and Update pushes
// an arena scope for its intermediates and pops it before returning, so the
// arena offset is the same before and after each call and the peak usage is
// bounded by EstimateArenaSize.
//
// # Quick Start
//
//	a, _ := arena.New(kalman.EstimateArenaSize(4, 2))
//	defer a.Free()
//
//	cv, _ := models.NewConstantVelocity(a, 0, []float32{0, 0}, models.ConstantVelocityConfig{
//	    InitialVariance:     1,
//	    ProcessVariance:     0.01,
//	    ObservationVariance: 0.5,
//	})
//	kf, _ := kalman.New(a, cv)
//
//	_ = a.Scope(func() error {
//	    m, err := cv.NewPositionMeasurement(a, []float32{1.2, 0.9})
//	    if err != nil {
//	        return err
//	    }
//	    return kf.Update(100, m)
//	})
//
// # Errors
//
// Predict and Update never leave a filter half updated. A call into the past
// fails with ErrTemporalViolation and a singular innovation covariance with
// ErrSingularMatrix; both are recoverable and the filter keeps its previous
// state and time. Arena exhaustion (ErrCapacityExceeded), scope misuse
// (ErrScopeImbalance) and shape errors (*ErrDimensionMismatch) indicate a
// configuration problem.
//
// # Concurrency
//
// A Filter and its arena are single-threaded. Run independent filters on
// independent arenas to use several goroutines; see package replay.
package kalman
