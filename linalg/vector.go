package linalg

import (
	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/internal/math32"
)

// Vector is a fixed-length float32 sequence stored in an arena.
//
// A Vector is a lightweight value: copying it copies the view, not the
// elements. Vectors with Inc() != 1 are strided views into another
// allocation, for example a matrix column.
type Vector struct {
	a    *arena.Arena
	ref  arena.Ref
	data []float32
	n    int
	inc  int
}

// NewVector allocates a zeroed vector of length n in the arena's current scope.
func NewVector(a *arena.Arena, n int) (Vector, error) {
	if n <= 0 {
		return Vector{}, ErrShape
	}
	data, ref, err := a.AllocFloat32s(n)
	if err != nil {
		return Vector{}, err
	}
	return Vector{a: a, ref: ref, data: data, n: n, inc: 1}, nil
}

// VectorFrom allocates a vector holding a copy of vals.
func VectorFrom(a *arena.Arena, vals []float32) (Vector, error) {
	v, err := NewVector(a, len(vals))
	if err != nil {
		return Vector{}, err
	}
	copy(v.data, vals)
	return v, nil
}

// Len returns the number of elements.
func (v Vector) Len() int { return v.n }

// Inc returns the element stride.
func (v Vector) Inc() int { return v.inc }

// Arena returns the arena that owns the vector storage.
func (v Vector) Arena() *arena.Arena { return v.a }

// Ref returns the handle of the underlying allocation.
func (v Vector) Ref() arena.Ref { return v.ref }

// Valid reports whether the vector storage is still live.
func (v Vector) Valid() bool {
	return v.a != nil && v.a.Valid(v.ref)
}

func (v Vector) check() error {
	if v.a == nil {
		return ErrZeroValue
	}
	return v.a.Check(v.ref)
}

func (v Vector) shape() Shape { return Shape{Rows: v.n, Cols: 1} }

// AtVec returns element i. It panics if i is out of range or the vector is stale.
func (v Vector) AtVec(i int) float32 {
	if uint(i) >= uint(v.n) {
		panic(ErrIndexOutOfRange)
	}
	v.mustBeValid()
	return v.data[i*v.inc]
}

// SetVec sets element i. It panics if i is out of range or the vector is stale.
func (v Vector) SetVec(i int, val float32) {
	if uint(i) >= uint(v.n) {
		panic(ErrIndexOutOfRange)
	}
	v.mustBeValid()
	v.data[i*v.inc] = val
}

func (v Vector) mustBeValid() {
	if !v.Valid() {
		panic(arena.ErrStaleRef)
	}
}

// Raw returns a heap copy of the elements.
func (v Vector) Raw() []float32 {
	v.mustBeValid()
	out := make([]float32, v.n)
	math32.CopyInc(v.n, v.data, v.inc, out, 1)
	return out
}

// SliceVec returns the view of elements [i, k). It panics on invalid bounds.
func (v Vector) SliceVec(i, k int) Vector {
	if i < 0 || k > v.n || i >= k {
		panic(ErrIndexOutOfRange)
	}
	return Vector{
		a:    v.a,
		ref:  v.ref,
		data: v.data[i*v.inc : (k-1)*v.inc+1],
		n:    k - i,
		inc:  v.inc,
	}
}

// Fill sets every element to val.
func (v Vector) Fill(val float32) error {
	if err := v.check(); err != nil {
		return err
	}
	math32.FillInc(v.n, val, v.data, v.inc)
	return nil
}

// CopyVec copies src into v.
func (v Vector) CopyVec(src Vector) error {
	if err := checkAll(v, src); err != nil {
		return err
	}
	if src.n != v.n {
		return mismatch("CopyVec", v.shape(), src.shape())
	}
	if v.identical(src) {
		return nil
	}
	if overlaps(v.data, src.data) {
		return v.stage(func(dst Vector) error {
			math32.CopyInc(v.n, src.data, src.inc, dst.data, 1)
			return nil
		})
	}
	math32.CopyInc(v.n, src.data, src.inc, v.data, v.inc)
	return nil
}

// AddVec computes v = x + y.
func (v Vector) AddVec(x, y Vector) error {
	return v.AddScaledVec(x, 1, y)
}

// SubVec computes v = x - y.
func (v Vector) SubVec(x, y Vector) error {
	return v.AddScaledVec(x, -1, y)
}

// AddScaledVec computes v = x + alpha*y.
func (v Vector) AddScaledVec(x Vector, alpha float32, y Vector) error {
	if err := checkAll(v, x, y); err != nil {
		return err
	}
	if x.n != v.n {
		return mismatch("AddScaledVec", v.shape(), x.shape())
	}
	if y.n != v.n {
		return mismatch("AddScaledVec", v.shape(), y.shape())
	}
	if v.writeConflicts(x) || v.writeConflicts(y) {
		return v.stage(func(dst Vector) error {
			addScaled(dst, x, alpha, y)
			return nil
		})
	}
	addScaled(v, x, alpha, y)
	return nil
}

func addScaled(dst, x Vector, alpha float32, y Vector) {
	ix, iy, id := 0, 0, 0
	for range dst.n {
		dst.data[id] = x.data[ix] + alpha*y.data[iy]
		ix += x.inc
		iy += y.inc
		id += dst.inc
	}
}

// ScaleVec computes v = alpha*x.
func (v Vector) ScaleVec(alpha float32, x Vector) error {
	if err := v.CopyVec(x); err != nil {
		return err
	}
	math32.ScaleInc(v.n, alpha, v.data, v.inc)
	return nil
}

// MulVec computes v = A·x.
func (v Vector) MulVec(a Matrix, x Vector) error {
	if err := checkAll(v, x); err != nil {
		return err
	}
	if err := a.check(); err != nil {
		return err
	}
	if a.cols != x.n {
		return mismatch("MulVec", Shape{Rows: a.cols, Cols: 1}, x.shape())
	}
	if a.rows != v.n {
		return mismatch("MulVec", Shape{Rows: a.rows, Cols: 1}, v.shape())
	}
	if overlaps(v.data, x.data) || overlaps(v.data, a.data) {
		return v.stage(func(dst Vector) error {
			mulVec(dst, a, x)
			return nil
		})
	}
	mulVec(v, a, x)
	return nil
}

func mulVec(dst Vector, a Matrix, x Vector) {
	for i := range a.rows {
		row := a.data[i*a.stride : i*a.stride+a.cols]
		dst.data[i*dst.inc] = math32.DotInc(a.cols, row, 1, x.data, x.inc)
	}
}

// Dot returns the inner product of x and y.
func Dot(x, y Vector) (float32, error) {
	if err := checkAll(x, y); err != nil {
		return 0, err
	}
	if x.n != y.n {
		return 0, mismatch("Dot", x.shape(), y.shape())
	}
	return math32.DotInc(x.n, x.data, x.inc, y.data, y.inc), nil
}

// identical reports whether v and w describe exactly the same elements.
func (v Vector) identical(w Vector) bool {
	return v.n == w.n && v.inc == w.inc && sameView(v.data, w.data)
}

// writeConflicts reports whether writing v element by element could clobber
// an element of w before it is read.
func (v Vector) writeConflicts(w Vector) bool {
	return overlaps(v.data, w.data) && !v.identical(w)
}

// stage runs fn against a scoped temporary and copies the result into v.
func (v Vector) stage(fn func(dst Vector) error) error {
	return v.a.Scope(func() error {
		tmp, err := NewVector(v.a, v.n)
		if err != nil {
			return err
		}
		if err := fn(tmp); err != nil {
			return err
		}
		math32.CopyInc(v.n, tmp.data, 1, v.data, v.inc)
		return nil
	})
}

func checkAll(vs ...Vector) error {
	for _, v := range vs {
		if err := v.check(); err != nil {
			return err
		}
	}
	return nil
}
