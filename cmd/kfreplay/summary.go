package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/kalman/replay"
	"gonum.org/v1/gonum/mat"
)

// covarianceSummary returns the trace and the condition number of the
// symmetric part of p. A singular p has an infinite condition number.
func covarianceSummary(p *mat.Dense) (trace, cond float64) {
	if p == nil {
		return math.NaN(), math.NaN()
	}
	n, _ := p.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (p.At(i, j)+p.At(j, i))/2)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return mat.Trace(p), math.NaN()
	}
	values := eig.Values(nil)
	lo, hi := math.Abs(values[0]), math.Abs(values[0])
	for _, v := range values[1:] {
		lo = math.Min(lo, math.Abs(v))
		hi = math.Max(hi, math.Abs(v))
	}
	if lo == 0 {
		return mat.Trace(p), math.Inf(1)
	}
	return mat.Trace(p), hi / lo
}

func writeSummary(w io.Writer, reports []*replay.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACE\tSTATUS\tSAMPLES\tACCEPTED\tREJECTED\tFINAL T\tTRACE(P)\tCOND(P)\tARENA PEAK\tDURATION")
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		tr, cond := covarianceSummary(rep.FinalCovariance)
		status := "ok"
		if rep.Err != nil {
			status = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.4g\t%.3g\t%s/%s\t%s\n",
			rep.Trace, status, rep.Samples, rep.Accepted, rep.RejectedCount(), rep.FinalTime,
			tr, cond,
			humanize.IBytes(uint64(rep.PeakArena)), humanize.IBytes(uint64(rep.ArenaCapacity)), //nolint:gosec // non-negative sizes
			rep.Duration.Round(time.Microsecond),
		)
	}
	return tw.Flush()
}
