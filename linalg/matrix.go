package linalg

import (
	"fmt"
	"strings"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/internal/math32"
)

// Matrix is a row-major float32 grid stored in an arena.
//
// The row stride may exceed the column count, which lets Slice describe a
// sub-block of a larger allocation without copying. Like Vector, a Matrix is
// a value describing a view; methods that write store into the receiver's
// elements.
type Matrix struct {
	a      *arena.Arena
	ref    arena.Ref
	data   []float32
	rows   int
	cols   int
	stride int
}

// NewMatrix allocates a zeroed r×c matrix in the arena's current scope.
func NewMatrix(a *arena.Arena, r, c int) (Matrix, error) {
	if r <= 0 || c <= 0 {
		return Matrix{}, ErrShape
	}
	data, ref, err := a.AllocFloat32s(r * c)
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{a: a, ref: ref, data: data, rows: r, cols: c, stride: c}, nil
}

// MatrixFrom allocates an r×c matrix holding a copy of the row-major vals.
func MatrixFrom(a *arena.Arena, r, c int, vals []float32) (Matrix, error) {
	if len(vals) != r*c {
		return Matrix{}, mismatch("MatrixFrom", Shape{Rows: r, Cols: c}, Shape{Rows: len(vals), Cols: 1})
	}
	m, err := NewMatrix(a, r, c)
	if err != nil {
		return Matrix{}, err
	}
	copy(m.data, vals)
	return m, nil
}

// Eye allocates an n×n identity matrix in the arena's current scope.
func Eye(a *arena.Arena, n int) (Matrix, error) {
	m, err := NewMatrix(a, n, n)
	if err != nil {
		return Matrix{}, err
	}
	for i := range n {
		m.data[i*m.stride+i] = 1
	}
	return m, nil
}

// Dims returns the number of rows and columns.
func (m Matrix) Dims() (r, c int) { return m.rows, m.cols }

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// Stride returns the distance between the starts of consecutive rows.
func (m Matrix) Stride() int { return m.stride }

// Arena returns the arena that owns the matrix storage.
func (m Matrix) Arena() *arena.Arena { return m.a }

// Ref returns the handle of the underlying allocation.
func (m Matrix) Ref() arena.Ref { return m.ref }

// Valid reports whether the matrix storage is still live.
func (m Matrix) Valid() bool {
	return m.a != nil && m.a.Valid(m.ref)
}

// IsSquare reports whether rows == cols.
func (m Matrix) IsSquare() bool { return m.rows == m.cols }

func (m Matrix) check() error {
	if m.a == nil {
		return ErrZeroValue
	}
	return m.a.Check(m.ref)
}

func (m Matrix) mustBeValid() {
	if !m.Valid() {
		panic(arena.ErrStaleRef)
	}
}

func (m Matrix) shape() Shape { return Shape{Rows: m.rows, Cols: m.cols} }

// At returns element (i, j). It panics if the index is out of range or the
// matrix is stale.
func (m Matrix) At(i, j int) float32 {
	if uint(i) >= uint(m.rows) || uint(j) >= uint(m.cols) {
		panic(ErrIndexOutOfRange)
	}
	m.mustBeValid()
	return m.data[i*m.stride+j]
}

// Set sets element (i, j). It panics if the index is out of range or the
// matrix is stale.
func (m Matrix) Set(i, j int, v float32) {
	if uint(i) >= uint(m.rows) || uint(j) >= uint(m.cols) {
		panic(ErrIndexOutOfRange)
	}
	m.mustBeValid()
	m.data[i*m.stride+j] = v
}

// Raw returns a dense row-major heap copy of the elements.
func (m Matrix) Raw() []float32 {
	m.mustBeValid()
	out := make([]float32, m.rows*m.cols)
	for i := range m.rows {
		copy(out[i*m.cols:(i+1)*m.cols], m.row(i))
	}
	return out
}

func (m Matrix) row(i int) []float32 {
	return m.data[i*m.stride : i*m.stride+m.cols]
}

// Slice returns the view of rows [i, k) and columns [j, l).
// It panics on invalid bounds.
func (m Matrix) Slice(i, k, j, l int) Matrix {
	if i < 0 || k > m.rows || i >= k || j < 0 || l > m.cols || j >= l {
		panic(ErrIndexOutOfRange)
	}
	return Matrix{
		a:      m.a,
		ref:    m.ref,
		data:   m.data[i*m.stride+j : (k-1)*m.stride+l],
		rows:   k - i,
		cols:   l - j,
		stride: m.stride,
	}
}

// RowView returns row i as a contiguous vector view.
func (m Matrix) RowView(i int) Vector {
	if uint(i) >= uint(m.rows) {
		panic(ErrIndexOutOfRange)
	}
	return Vector{a: m.a, ref: m.ref, data: m.row(i), n: m.cols, inc: 1}
}

// ColView returns column j as a strided vector view.
func (m Matrix) ColView(j int) Vector {
	if uint(j) >= uint(m.cols) {
		panic(ErrIndexOutOfRange)
	}
	return Vector{
		a:    m.a,
		ref:  m.ref,
		data: m.data[j : (m.rows-1)*m.stride+j+1],
		n:    m.rows,
		inc:  m.stride,
	}
}

// Fill sets every element to v.
func (m Matrix) Fill(v float32) error {
	if err := m.check(); err != nil {
		return err
	}
	for i := range m.rows {
		math32.FillInc(m.cols, v, m.row(i), 1)
	}
	return nil
}

// SetIdentity overwrites a square matrix with the identity.
func (m Matrix) SetIdentity() error {
	if !m.IsSquare() {
		return ErrNotSquare
	}
	if err := m.Fill(0); err != nil {
		return err
	}
	for i := range m.rows {
		m.data[i*m.stride+i] = 1
	}
	return nil
}

// Copy copies src into m. Shapes must match.
func (m Matrix) Copy(src Matrix) error {
	if err := checkMats(m, src); err != nil {
		return err
	}
	if src.shape() != m.shape() {
		return mismatch("Copy", m.shape(), src.shape())
	}
	if m.identical(src) {
		return nil
	}
	if overlaps(m.data, src.data) {
		return m.stage(func(dst Matrix) error {
			copyInto(dst, src)
			return nil
		})
	}
	copyInto(m, src)
	return nil
}

func copyInto(dst, src Matrix) {
	for i := range dst.rows {
		copy(dst.row(i), src.row(i))
	}
}

// Add computes m = x + y.
func (m Matrix) Add(x, y Matrix) error {
	return m.addScaled("Add", x, 1, y)
}

// Sub computes m = x - y.
func (m Matrix) Sub(x, y Matrix) error {
	return m.addScaled("Sub", x, -1, y)
}

func (m Matrix) addScaled(op string, x Matrix, alpha float32, y Matrix) error {
	if err := checkMats(m, x, y); err != nil {
		return err
	}
	if x.shape() != m.shape() {
		return mismatch(op, m.shape(), x.shape())
	}
	if y.shape() != m.shape() {
		return mismatch(op, m.shape(), y.shape())
	}
	if m.writeConflicts(x) || m.writeConflicts(y) {
		return m.stage(func(dst Matrix) error {
			addScaledInto(dst, x, alpha, y)
			return nil
		})
	}
	addScaledInto(m, x, alpha, y)
	return nil
}

func addScaledInto(dst, x Matrix, alpha float32, y Matrix) {
	for i := range dst.rows {
		d, xr, yr := dst.row(i), x.row(i), y.row(i)
		for j := range d {
			d[j] = xr[j] + alpha*yr[j]
		}
	}
}

// Scale computes m = alpha*x.
func (m Matrix) Scale(alpha float32, x Matrix) error {
	if err := m.Copy(x); err != nil {
		return err
	}
	for i := range m.rows {
		math32.ScaleInc(m.cols, alpha, m.row(i), 1)
	}
	return nil
}

// Mul computes m = x·y.
//
// When m shares storage with x or y the product is staged in a scoped
// temporary; otherwise it is written directly.
func (m Matrix) Mul(x, y Matrix) error {
	if err := checkMats(m, x, y); err != nil {
		return err
	}
	if x.cols != y.rows {
		return mismatch("Mul", Shape{Rows: x.cols, Cols: y.cols}, y.shape())
	}
	if m.rows != x.rows || m.cols != y.cols {
		return mismatch("Mul", Shape{Rows: x.rows, Cols: y.cols}, m.shape())
	}
	if overlaps(m.data, x.data) || overlaps(m.data, y.data) {
		return m.stage(func(dst Matrix) error {
			mulInto(dst, x, y)
			return nil
		})
	}
	mulInto(m, x, y)
	return nil
}

// mulInto writes x·y into dst, which must not overlap x or y.
func mulInto(dst, x, y Matrix) {
	for i := range x.rows {
		xr := x.row(i)
		d := dst.row(i)
		for j := range y.cols {
			d[j] = math32.DotInc(x.cols, xr, 1, y.data[j:], y.stride)
		}
	}
}

// Product computes m = x·y·z with the intermediate x·y held in a scoped
// temporary. Covariance propagation uses it as T·P·Tᵗ.
func (m Matrix) Product(x, y, z Matrix) error {
	if err := checkMats(m, x, y, z); err != nil {
		return err
	}
	if x.cols != y.rows {
		return mismatch("Product", Shape{Rows: x.cols, Cols: y.cols}, y.shape())
	}
	return m.a.Scope(func() error {
		xy, err := NewMatrix(m.a, x.rows, y.cols)
		if err != nil {
			return err
		}
		mulInto(xy, x, y)
		return m.Mul(xy, z)
	})
}

// T returns a new matrix holding the transpose of m, allocated in the
// arena's current scope. m is never modified.
func (m Matrix) T() (Matrix, error) {
	if err := m.check(); err != nil {
		return Matrix{}, err
	}
	t, err := NewMatrix(m.a, m.cols, m.rows)
	if err != nil {
		return Matrix{}, err
	}
	for i := range m.rows {
		r := m.row(i)
		for j, v := range r {
			t.data[j*t.stride+i] = v
		}
	}
	return t, nil
}

func (m Matrix) identical(w Matrix) bool {
	return m.shape() == w.shape() && m.stride == w.stride && sameView(m.data, w.data)
}

func (m Matrix) writeConflicts(w Matrix) bool {
	return overlaps(m.data, w.data) && !m.identical(w)
}

// stage runs fn against a scoped temporary and copies the result into m.
func (m Matrix) stage(fn func(dst Matrix) error) error {
	return m.a.Scope(func() error {
		tmp, err := NewMatrix(m.a, m.rows, m.cols)
		if err != nil {
			return err
		}
		if err := fn(tmp); err != nil {
			return err
		}
		copyInto(m, tmp)
		return nil
	})
}

func checkMats(ms ...Matrix) error {
	for _, m := range ms {
		if err := m.check(); err != nil {
			return err
		}
	}
	return nil
}

// String formats the matrix one row per line.
func (m Matrix) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Matrix{%s, stale}", m.shape())
	}
	var sb strings.Builder
	for i := range m.rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteByte('[')
		for j, v := range m.row(i) {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", v)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
