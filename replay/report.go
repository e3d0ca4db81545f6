package replay

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"
)

// Report summarises one replayed trace.
type Report struct {
	// Trace and Output are the blob names that were read and written.
	Trace  string
	Output string

	// Samples counts every decoded row, Accepted the rows the filter took.
	Samples  int
	Accepted int
	// Rejected holds the zero-based indices of rows refused by the filter
	// because they went back in time or produced a singular innovation.
	Rejected *roaring.Bitmap

	// FinalTime, FinalState and FinalCovariance are the filter state after
	// the last accepted row. FinalCovariance is a float64 copy.
	FinalTime       uint64
	FinalState      []float32
	FinalCovariance *mat.Dense

	// ArenaCapacity is the size the arena was created with and PeakArena
	// the highest offset it reached.
	ArenaCapacity int
	PeakArena     int

	Duration time.Duration
	// Err is the error that stopped the replay, nil on success.
	Err error
}

func newReport(job Job) *Report {
	return &Report{
		Trace:    job.Trace,
		Output:   job.Output,
		Rejected: roaring.New(),
	}
}

// RejectedIndices returns the rejected row indices in ascending order.
func (r *Report) RejectedIndices() []uint32 {
	return r.Rejected.ToArray()
}

// RejectedCount returns the number of rejected rows.
func (r *Report) RejectedCount() int {
	return int(r.Rejected.GetCardinality())
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d samples, %d accepted, %d rejected, t=%d, arena %d/%d bytes, %s",
		r.Trace, r.Samples, r.Accepted, r.RejectedCount(), r.FinalTime, r.PeakArena, r.ArenaCapacity, r.Duration)
}
