package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/blobstore"
	"github.com/hupe1980/kalman/linalg"
	"github.com/hupe1980/kalman/resource"
	"github.com/hupe1980/kalman/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "replay"

// ErrEmptyTrace is returned for a trace without a single sample.
var ErrEmptyTrace = errors.New("replay: trace has no samples")

// Job describes one trace to replay.
type Job struct {
	// Trace is the blob holding the measurements.
	Trace string
	// Output is the blob the estimates are written to. Empty disables output.
	Output string
	Model  ModelSpec
}

// Runner replays measurement traces from a blob store through Kalman filters.
// Each job gets its own arena and filter, so jobs run in parallel safely.
type Runner struct {
	store          blobstore.BlobStore
	rc             *resource.Controller
	logger         *kalman.Logger
	metrics        kalman.MetricsCollector
	tracer         oteltrace.Tracer
	heap           bool
	acquireTimeout time.Duration
}

// NewRunner creates a Runner reading from and writing to store.
func NewRunner(store blobstore.BlobStore, opts ...Option) *Runner {
	r := &Runner{
		store:          store,
		logger:         kalman.NoopLogger(),
		metrics:        kalman.NoopMetricsCollector{},
		tracer:         otel.Tracer(tracerName),
		acquireTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rc == nil {
		r.rc = resource.NewController(resource.Config{
			MaxConcurrentReplays: int64(runtime.GOMAXPROCS(0)),
		})
	}
	return r
}

// Controller returns the resource controller the runner draws from.
func (r *Runner) Controller() *resource.Controller {
	return r.rc
}

// Run replays a single trace. Samples the filter rejects as temporal
// violations or singular innovations are recorded in the report and skipped;
// any other error stops the job and discards its output.
func (r *Runner) Run(ctx context.Context, job Job) (*Report, error) {
	ctx, span := r.tracer.Start(ctx, "replay.Run",
		oteltrace.WithAttributes(
			attribute.String("trace", job.Trace),
			attribute.String("output", job.Output),
			attribute.String("model", string(job.Model.Kind)),
		))
	defer span.End()

	start := time.Now()
	rep := newReport(job)
	err := r.run(ctx, job, rep)
	rep.Duration = time.Since(start)
	rep.Err = err

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replay failed")
	} else {
		span.SetAttributes(
			attribute.Int("samples", rep.Samples),
			attribute.Int("rejected", rep.RejectedCount()),
			attribute.Int("arena_peak", rep.PeakArena),
		)
	}
	r.logger.LogReplay(ctx, job.Trace, rep.Samples, rep.RejectedCount(), err)

	return rep, err
}

func (r *Runner) run(ctx context.Context, job Job, rep *Report) (err error) {
	blob, err := r.store.Open(ctx, job.Trace)
	if err != nil {
		return fmt.Errorf("replay: open %s: %w", job.Trace, err)
	}
	defer blob.Close() //nolint:errcheck

	src, err := trace.Open(resource.NewRateLimitedReader(ctx, blob, r.rc), job.Trace)
	if err != nil {
		return fmt.Errorf("replay: decode %s: %w", job.Trace, err)
	}
	defer src.Close() //nolint:errcheck

	samples := trace.NewReader(src)
	first, err := samples.Next()
	if err == io.EOF {
		return fmt.Errorf("%w: %s", ErrEmptyTrace, job.Trace)
	}
	if err != nil {
		return fmt.Errorf("replay: %s: %w", job.Trace, err)
	}

	obsDims := len(first.Values)
	stateDims, err := job.Model.StateDims(obsDims)
	if err != nil {
		return err
	}

	a, err := r.newArena(kalman.EstimateArenaSize(stateDims, obsDims))
	if err != nil {
		return err
	}
	defer func() {
		rep.ArenaCapacity = a.Capacity()
		rep.PeakArena = a.Peak()
		err = errors.Join(err, a.Free())
	}()

	model, measure, err := job.Model.build(a, first)
	if err != nil {
		return err
	}
	kf, err := kalman.New(a, model,
		kalman.WithLogger(r.logger.WithName(job.Trace).WithDims(stateDims)),
		kalman.WithMetricsCollector(r.metrics),
	)
	if err != nil {
		return err
	}

	out, err := r.createOutput(ctx, job.Output, stateDims)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, out.abort())
		}
	}()

	sample := first
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rep.Samples++
		accepted, err := step(a, kf, measure, sample)
		if err != nil {
			return fmt.Errorf("replay: %s: sample %d at t=%d: %w", job.Trace, i, sample.Time, err)
		}
		if accepted {
			rep.Accepted++
			if err := out.write(kf); err != nil {
				return fmt.Errorf("replay: write %s: %w", job.Output, err)
			}
		} else {
			rep.Rejected.Add(uint32(i))
		}

		sample, err = samples.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("replay: %s: %w", job.Trace, err)
		}
	}

	if err := out.close(); err != nil {
		return fmt.Errorf("replay: write %s: %w", job.Output, err)
	}

	rep.FinalTime = kf.Time()
	rep.FinalState = slices.Clone(kf.State().Raw())
	rep.FinalCovariance = linalg.ToDense(kf.Covariance())
	return nil
}

func (r *Runner) newArena(size int) (*arena.Arena, error) {
	opts := []arena.Option{
		arena.WithMemoryAcquirer(r.rc),
		arena.WithAcquireTimeout(r.acquireTimeout),
	}
	if r.heap {
		opts = append(opts, arena.WithHeap())
	}
	return arena.New(size, opts...)
}

// step feeds one sample to the filter inside its own arena scope, so the
// measurement is released whatever the outcome.
func step(a *arena.Arena, kf *kalman.Filter, measure measureFunc, s trace.Sample) (bool, error) {
	err := a.Scope(func() error {
		m, err := measure(a, s.Values)
		if err != nil {
			return err
		}
		return kf.Update(s.Time, m)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, kalman.ErrTemporalViolation), errors.Is(err, kalman.ErrSingularMatrix):
		return false, nil
	default:
		return false, err
	}
}

// RunAll replays jobs concurrently, at most one per controller slot. The
// first failing job cancels the rest. Reports are returned in job order; a
// job that never started has a nil report.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) ([]*Report, error) {
	reports := make([]*Report, len(jobs))
	g, ctx := errgroup.WithContext(ctx)

	var acquireErr error
	for i, job := range jobs {
		if err := r.rc.AcquireSlot(ctx); err != nil {
			acquireErr = err
			break
		}
		g.Go(func() error {
			defer r.rc.ReleaseSlot()
			rep, err := r.Run(ctx, job)
			reports[i] = rep
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, acquireErr
}
