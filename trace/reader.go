package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	// ErrNoValues is returned for a row with a time column but no values.
	ErrNoValues = errors.New("trace: row has no measurement values")
	// ErrNonFinite is returned for NaN or infinite values.
	ErrNonFinite = errors.New("trace: non-finite value")
)

// ParseError reports a malformed row.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Sample is one measurement row: a timestamp in milliseconds followed by
// the measured values.
type Sample struct {
	Time   uint64
	Values []float32
}

// Reader decodes a measurement trace. Each row is "time,v0,v1,...". Lines
// starting with '#' and blank lines are skipped, and every row must have the
// same number of columns as the first.
type Reader struct {
	csv  *csv.Reader
	dims int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Dims returns the number of values per sample, or 0 before the first row.
func (r *Reader) Dims() int {
	return r.dims
}

// Next returns the next sample, or io.EOF after the last one.
func (r *Reader) Next() (Sample, error) {
	rec, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return Sample{}, io.EOF
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return Sample{}, &ParseError{Line: pe.Line, Err: pe.Err}
		}
		return Sample{}, err
	}

	line, _ := r.csv.FieldPos(0)
	if len(rec) < 2 {
		return Sample{}, &ParseError{Line: line, Err: ErrNoValues}
	}

	t, err := strconv.ParseUint(rec[0], 10, 64)
	if err != nil {
		return Sample{}, &ParseError{Line: line, Err: err}
	}

	values := make([]float32, len(rec)-1)
	for i, field := range rec[1:] {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return Sample{}, &ParseError{Line: line, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, &ParseError{Line: line, Err: fmt.Errorf("%w: column %d", ErrNonFinite, i+1)}
		}
		values[i] = float32(v)
	}
	r.dims = len(values)

	return Sample{Time: t, Values: values}, nil
}

// ReadAll reads the remaining samples.
func (r *Reader) ReadAll() ([]Sample, error) {
	var out []Sample
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
