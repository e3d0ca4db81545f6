package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Estimate is one filter output row: the time of the estimate, the state
// vector and the diagonal of its covariance.
type Estimate struct {
	Time     uint64
	State    []float32
	Variance []float32
}

// Writer encodes estimates as "time,x0..xn,p0..pn" rows.
type Writer struct {
	out    io.Writer
	csv    *csv.Writer
	record []string
	dims   int
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w, csv: csv.NewWriter(w)}
}

// WriteHeader writes a comment naming the columns for a state of dims values.
func (w *Writer) WriteHeader(dims int) error {
	cols := make([]string, 0, 1+2*dims)
	cols = append(cols, "time")
	for i := range dims {
		cols = append(cols, "x"+strconv.Itoa(i))
	}
	for i := range dims {
		cols = append(cols, "p"+strconv.Itoa(i))
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	// The header is a comment line, not a record.
	_, err := io.WriteString(w.out, "# "+strings.Join(cols, ",")+"\n")
	return err
}

// Write appends one estimate. All estimates must have the same dimension and
// len(Variance) must equal len(State).
func (w *Writer) Write(e Estimate) error {
	if len(e.Variance) != len(e.State) {
		return fmt.Errorf("trace: estimate has %d state values and %d variances", len(e.State), len(e.Variance))
	}
	if w.dims == 0 {
		w.dims = len(e.State)
	} else if len(e.State) != w.dims {
		return fmt.Errorf("trace: estimate dimension changed from %d to %d", w.dims, len(e.State))
	}

	w.record = w.record[:0]
	w.record = append(w.record, strconv.FormatUint(e.Time, 10))
	for _, v := range e.State {
		w.record = append(w.record, formatFloat(v))
	}
	for _, v := range e.Variance {
		w.record = append(w.record, formatFloat(v))
	}
	return w.csv.Write(w.record)
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
