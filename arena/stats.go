package arena

type counters struct {
	allocs       uint64
	failedAllocs uint64
	bytes        uint64
	pushes       uint64
	pops         uint64
	resets       uint64
}

// Stats is a snapshot of arena usage.
//
// Note on semantics:
//   - Offset, Peak and Depth describe the current state
//   - Allocs, BytesAllocated, ScopePushes, ScopePops and Resets are cumulative
//   - BytesAllocated includes alignment padding
type Stats struct {
	Backing        Backing
	Capacity       int
	Offset         int
	Peak           int
	Depth          int
	Allocs         uint64
	FailedAllocs   uint64
	BytesAllocated uint64
	ScopePushes    uint64
	ScopePops      uint64
	Resets         uint64
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Backing:        a.backing,
		Capacity:       len(a.buf),
		Offset:         a.offset,
		Peak:           a.peak,
		Depth:          a.depth,
		Allocs:         a.stats.allocs,
		FailedAllocs:   a.stats.failedAllocs,
		BytesAllocated: a.stats.bytes,
		ScopePushes:    a.stats.pushes,
		ScopePops:      a.stats.pops,
		Resets:         a.stats.resets,
	}
}

// Utilization returns the peak offset as a fraction of capacity.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Peak) / float64(s.Capacity)
}
