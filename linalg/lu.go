package linalg

import (
	"slices"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/internal/math32"
)

// LU is an in-place LU factorization with partial pivoting: P·A = L·U.
//
// The factors overwrite the decomposed matrix. L has an implicit unit
// diagonal and is stored below it; U is stored on and above it. The pivot
// permutation lives in the arena scope that was active at decomposition.
type LU struct {
	lu      Matrix
	piv     []int
	pivRef  arena.Ref
	pivsign float32
}

// Decompose factors a in place. a must have at least as many rows as
// columns; callers that need the original values must copy first.
//
// The elimination is the left-looking Doolittle form: each column is
// completed with dot products over at most min(i, j) earlier terms, then
// the largest remaining entry is swapped onto the diagonal.
func Decompose(a Matrix) (LU, error) {
	if err := a.check(); err != nil {
		return LU{}, err
	}
	m, n := a.rows, a.cols
	if m < n {
		return LU{}, mismatch("Decompose", Shape{Rows: n, Cols: n}, a.shape())
	}

	piv, pivRef, err := arena.MakeSlice[int](a.a, m)
	if err != nil {
		return LU{}, err
	}
	for i := range piv {
		piv[i] = i
	}
	f := LU{lu: a, piv: piv, pivRef: pivRef, pivsign: 1}

	err = a.a.Scope(func() error {
		colj, _, err := a.a.AllocFloat32s(m)
		if err != nil {
			return err
		}
		f.eliminate(colj)
		return nil
	})
	if err != nil {
		return LU{}, err
	}
	return f, nil
}

func (f *LU) eliminate(colj []float32) {
	lu := f.lu
	m, n := lu.rows, lu.cols

	for j := range n {
		for i := range m {
			colj[i] = lu.data[i*lu.stride+j]
		}

		for i := range m {
			rowi := lu.row(i)
			kmax := min(i, j)
			s := math32.Dot(rowi[:kmax], colj[:kmax])
			colj[i] -= s
			rowi[j] = colj[i]
		}

		p := j
		for i := j + 1; i < m; i++ {
			if math32.Abs(colj[i]) > math32.Abs(colj[p]) {
				p = i
			}
		}
		if p != j {
			rp, rj := lu.row(p), lu.row(j)
			for k := range n {
				rp[k], rj[k] = rj[k], rp[k]
			}
			f.piv[p], f.piv[j] = f.piv[j], f.piv[p]
			f.pivsign = -f.pivsign
		}

		// An exactly zero pivot leaves the column untouched; it is reported
		// by IsNonsingular rather than divided by.
		if d := lu.data[j*lu.stride+j]; d != 0 {
			for i := j + 1; i < m; i++ {
				lu.data[i*lu.stride+j] /= d
			}
		}
	}
}

// check reports whether the factors and the pivots are still live.
func (f LU) check() error {
	if err := f.lu.check(); err != nil {
		return err
	}
	return f.lu.a.Check(f.pivRef)
}

// IsNonsingular reports whether every diagonal entry of U is nonzero. A
// factorization whose scope has been popped is never nonsingular.
func (f LU) IsNonsingular() bool {
	if f.check() != nil {
		return false
	}
	for j := range f.lu.cols {
		if f.lu.data[j*f.lu.stride+j] == 0 {
			return false
		}
	}
	return true
}

// MinPivot returns the smallest absolute diagonal entry of U.
// A tiny but nonzero value signals an ill-conditioned matrix.
func (f LU) MinPivot() (float32, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if f.lu.cols == 0 {
		return 0, nil
	}
	minPivot := math32.Abs(f.lu.data[0])
	for j := 1; j < f.lu.cols; j++ {
		minPivot = min(minPivot, math32.Abs(f.lu.data[j*f.lu.stride+j]))
	}
	return minPivot, nil
}

// Determinant returns det(A) of the decomposed square matrix.
func (f LU) Determinant() (float32, error) {
	if !f.lu.IsSquare() {
		return 0, ErrNotSquare
	}
	if err := f.lu.check(); err != nil {
		return 0, err
	}
	d := f.pivsign
	for j := range f.lu.cols {
		d *= f.lu.data[j*f.lu.stride+j]
	}
	return d, nil
}

// Pivot returns a copy of the row permutation: row i of P·A is row Pivot()[i] of A.
func (f LU) Pivot() []int {
	return slices.Clone(f.piv)
}

// PivotSign returns +1 or -1 depending on the parity of the row swaps.
func (f LU) PivotSign() float32 { return f.pivsign }

// Dims returns the dimensions of the decomposed matrix.
func (f LU) Dims() (r, c int) { return f.lu.Dims() }

// L returns the unit lower-triangular factor as a new rows×cols matrix.
func (f LU) L() (Matrix, error) {
	if err := f.lu.check(); err != nil {
		return Matrix{}, err
	}
	m, n := f.lu.rows, f.lu.cols
	l, err := NewMatrix(f.lu.a, m, n)
	if err != nil {
		return Matrix{}, err
	}
	for i := range m {
		src, dst := f.lu.row(i), l.row(i)
		for j := range n {
			switch {
			case i > j:
				dst[j] = src[j]
			case i == j:
				dst[j] = 1
			}
		}
	}
	return l, nil
}

// U returns the upper-triangular factor as a new cols×cols matrix.
func (f LU) U() (Matrix, error) {
	if err := f.lu.check(); err != nil {
		return Matrix{}, err
	}
	n := f.lu.cols
	u, err := NewMatrix(f.lu.a, n, n)
	if err != nil {
		return Matrix{}, err
	}
	for i := range n {
		copy(u.row(i)[i:], f.lu.row(i)[i:])
	}
	return u, nil
}

// Solve returns X with A·X = B. The result is allocated in the arena's
// current scope; the permuted working copy of B is scoped and released.
func (f LU) Solve(b Matrix) (Matrix, error) {
	if err := checkMats(f.lu, b); err != nil {
		return Matrix{}, err
	}
	x, err := NewMatrix(f.lu.a, f.lu.cols, b.cols)
	if err != nil {
		return Matrix{}, err
	}
	if err := f.SolveTo(x, b); err != nil {
		return Matrix{}, err
	}
	return x, nil
}

// SolveTo writes the solution of A·X = B into dst, which must be cols×B.cols.
// dst may alias b.
func (f LU) SolveTo(dst, b Matrix) error {
	if err := checkMats(dst, b); err != nil {
		return err
	}
	if err := f.prepareSolve(dst, b.rows, b.cols); err != nil {
		return err
	}
	return f.lu.a.Scope(func() error {
		return f.solve(dst, b)
	})
}

// prepareSolve validates a solve of an rows×cols right-hand side into dst.
func (f LU) prepareSolve(dst Matrix, rows, cols int) error {
	if err := f.check(); err != nil {
		return err
	}
	m, n := f.lu.rows, f.lu.cols
	if rows != m {
		return mismatch("Solve", Shape{Rows: m, Cols: cols}, Shape{Rows: rows, Cols: cols})
	}
	if dst.rows != n || dst.cols != cols {
		return mismatch("Solve", Shape{Rows: n, Cols: cols}, dst.shape())
	}
	if !f.IsNonsingular() {
		return ErrSingular
	}
	return nil
}

// solve permutes b into a working matrix in the current scope, substitutes
// and copies the result into dst. It pushes no scope of its own.
func (f LU) solve(dst, b Matrix) error {
	m, n := f.lu.rows, f.lu.cols
	x, err := NewMatrix(f.lu.a, m, b.cols)
	if err != nil {
		return err
	}
	for i, p := range f.piv {
		copy(x.row(i), b.row(p))
	}
	f.substitute(x)
	copyInto(dst, x.Slice(0, n, 0, b.cols))
	return nil
}

// substitute runs forward substitution with L and back substitution with U
// over the permuted right-hand side x, in place.
func (f LU) substitute(x Matrix) {
	lu := f.lu
	n, nx := lu.cols, x.cols

	for k := range n {
		xk := x.row(k)
		for i := k + 1; i < n; i++ {
			math32.AxpyInc(nx, -lu.data[i*lu.stride+k], xk, 1, x.row(i), 1)
		}
	}
	for k := n - 1; k >= 0; k-- {
		xk := x.row(k)
		d := lu.data[k*lu.stride+k]
		for j := range xk {
			xk[j] /= d
		}
		for i := range k {
			math32.AxpyInc(nx, -lu.data[i*lu.stride+k], xk, 1, x.row(i), 1)
		}
	}
}

// Inverse returns A⁻¹ in the arena's current scope.
func (f LU) Inverse() (Matrix, error) {
	if !f.lu.IsSquare() {
		return Matrix{}, ErrNotSquare
	}
	inv, err := NewMatrix(f.lu.a, f.lu.rows, f.lu.cols)
	if err != nil {
		return Matrix{}, err
	}
	if err := f.InverseTo(inv); err != nil {
		return Matrix{}, err
	}
	return inv, nil
}

// InverseTo writes A⁻¹ into dst. The identity and the working matrix share
// one scope, so the call nests a single level below the caller.
func (f LU) InverseTo(dst Matrix) error {
	if !f.lu.IsSquare() {
		return ErrNotSquare
	}
	if err := dst.check(); err != nil {
		return err
	}
	if err := f.prepareSolve(dst, f.lu.rows, f.lu.rows); err != nil {
		return err
	}
	return f.lu.a.Scope(func() error {
		eye, err := Eye(f.lu.a, f.lu.rows)
		if err != nil {
			return err
		}
		return f.solve(dst, eye)
	})
}

// Solve returns X with A·X = B without modifying a.
func Solve(a, b Matrix) (Matrix, error) {
	if err := checkMats(a, b); err != nil {
		return Matrix{}, err
	}
	x, err := NewMatrix(a.a, a.cols, b.cols)
	if err != nil {
		return Matrix{}, err
	}
	err = a.a.Scope(func() error {
		f, err := decomposeCopy(a)
		if err != nil {
			return err
		}
		return f.SolveTo(x, b)
	})
	if err != nil {
		return Matrix{}, err
	}
	return x, nil
}

// Inverse returns A⁻¹ without modifying a.
func Inverse(a Matrix) (Matrix, error) {
	if err := a.check(); err != nil {
		return Matrix{}, err
	}
	if !a.IsSquare() {
		return Matrix{}, ErrNotSquare
	}
	inv, err := NewMatrix(a.a, a.rows, a.cols)
	if err != nil {
		return Matrix{}, err
	}
	err = a.a.Scope(func() error {
		f, err := decomposeCopy(a)
		if err != nil {
			return err
		}
		return f.InverseTo(inv)
	})
	if err != nil {
		return Matrix{}, err
	}
	return inv, nil
}

// Det returns det(A) without modifying a.
func Det(a Matrix) (float32, error) {
	if err := a.check(); err != nil {
		return 0, err
	}
	if !a.IsSquare() {
		return 0, ErrNotSquare
	}
	var det float32
	err := a.a.Scope(func() error {
		f, err := decomposeCopy(a)
		if err != nil {
			return err
		}
		det, err = f.Determinant()
		return err
	})
	return det, err
}

func decomposeCopy(a Matrix) (LU, error) {
	work, err := NewMatrix(a.a, a.rows, a.cols)
	if err != nil {
		return LU{}, err
	}
	copyInto(work, a)
	return Decompose(work)
}
