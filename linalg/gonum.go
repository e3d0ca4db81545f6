package linalg

import (
	"github.com/hupe1980/kalman/arena"
	"gonum.org/v1/gonum/mat"
)

// ToDense returns a float64 heap copy of m.
func ToDense(m Matrix) *mat.Dense {
	r, c := m.Dims()
	d := mat.NewDense(r, c, nil)
	for i := range r {
		for j := range c {
			d.Set(i, j, float64(m.At(i, j)))
		}
	}
	return d
}

// ToVecDense returns a float64 heap copy of v.
func ToVecDense(v Vector) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	for i := range v.Len() {
		out.SetVec(i, float64(v.AtVec(i)))
	}
	return out
}

// FromDense allocates a float32 copy of any gonum matrix in the arena's
// current scope. Values are rounded to the nearest float32.
func FromDense(a *arena.Arena, src mat.Matrix) (Matrix, error) {
	r, c := src.Dims()
	m, err := NewMatrix(a, r, c)
	if err != nil {
		return Matrix{}, err
	}
	for i := range r {
		row := m.row(i)
		for j := range row {
			row[j] = float32(src.At(i, j))
		}
	}
	return m, nil
}
