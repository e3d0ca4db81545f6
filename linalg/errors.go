package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrSingular is returned when a solve or inverse meets a zero pivot.
	ErrSingular = errors.New("linalg: matrix is singular")

	// ErrNotSquare is returned by operations that need a square matrix.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrShape is returned for non-positive dimensions.
	ErrShape = errors.New("linalg: dimensions must be positive")

	// ErrIndexOutOfRange is the panic value for element access outside the shape.
	ErrIndexOutOfRange = errors.New("linalg: index out of range")

	// ErrZeroValue is returned when a zero Vector or Matrix is used as an operand.
	ErrZeroValue = errors.New("linalg: zero value vector or matrix")
)

// Shape is the dimensionality of an operand. Vectors are n×1.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// ErrDimensionMismatch indicates operand shapes that disagree.
type ErrDimensionMismatch struct {
	Op       string
	Expected Shape
	Actual   Shape
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("linalg: %s: dimension mismatch: expected %s, got %s", e.Op, e.Expected, e.Actual)
}

func mismatch(op string, expected, actual Shape) error {
	return &ErrDimensionMismatch{Op: op, Expected: expected, Actual: actual}
}
