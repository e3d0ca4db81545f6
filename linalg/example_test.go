package linalg_test

import (
	"fmt"

	"github.com/hupe1980/kalman/arena"
	"github.com/hupe1980/kalman/linalg"
)

func Example() {
	a, err := arena.New(4096, arena.WithHeap())
	if err != nil {
		panic(err)
	}
	defer a.Free() //nolint:errcheck

	m, _ := linalg.MatrixFrom(a, 2, 2, []float32{4, 3, 6, 3})
	b, _ := linalg.MatrixFrom(a, 2, 1, []float32{10, 12})

	x, err := linalg.Solve(m, b)
	if err != nil {
		panic(err)
	}
	fmt.Println(x)

	det, _ := linalg.Det(m)
	fmt.Println(det)
	// Output:
	// [1]
	// [2]
	// -6
}
