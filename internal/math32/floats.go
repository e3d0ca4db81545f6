// Package math32 provides float32 kernels over strided slices.
//
// Every kernel takes an element count and a stride per operand so that rows
// (stride 1) and matrix columns (stride = row stride) share one code path.
// The BLAS level 1 kernels delegate to gonum's pure Go implementation, which
// works on caller-owned slices and so on arena memory. Callers guarantee the
// slices are long enough and strides are positive; gonum panics otherwise.
package math32

import (
	"math"

	"gonum.org/v1/gonum/blas/gonum"
)

var blas gonum.Implementation

// Abs returns |x|.
func Abs(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}

// Dot calculates the dot product of two contiguous vectors of equal length.
func Dot(a, b []float32) float32 {
	return blas.Sdot(len(a), a, 1, b, 1)
}

// DotInc calculates the dot product of n elements of x and y read with
// strides incX and incY.
func DotInc(n int, x []float32, incX int, y []float32, incY int) float32 {
	return blas.Sdot(n, x, incX, y, incY)
}

// AxpyInc computes y += alpha*x over n strided elements.
func AxpyInc(n int, alpha float32, x []float32, incX int, y []float32, incY int) {
	blas.Saxpy(n, alpha, x, incX, y, incY)
}

// ScaleInc multiplies n strided elements of x by alpha.
func ScaleInc(n int, alpha float32, x []float32, incX int) {
	blas.Sscal(n, alpha, x, incX)
}

// CopyInc copies n strided elements of x into y.
func CopyInc(n int, x []float32, incX int, y []float32, incY int) {
	blas.Scopy(n, x, incX, y, incY)
}

// FillInc sets n strided elements of x to v. BLAS has no fill.
func FillInc(n int, v float32, x []float32, incX int) {
	ix := 0
	for range n {
		x[ix] = v
		ix += incX
	}
}
