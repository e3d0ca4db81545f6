package linalg

import "unsafe"

// span returns the address range [lo, hi) covered by s.
func span(s []float32) (lo, hi uintptr) {
	if len(s) == 0 {
		return 0, 0
	}
	lo = uintptr(unsafe.Pointer(unsafe.SliceData(s))) //nolint:gosec // address comparison only
	return lo, lo + uintptr(len(s))*unsafe.Sizeof(float32(0))
}

// overlaps reports whether the backing ranges of a and b intersect.
// Views are compared by their full extent, so interleaved strided views
// count as overlapping.
func overlaps(a, b []float32) bool {
	alo, ahi := span(a)
	blo, bhi := span(b)
	if alo == ahi || blo == bhi {
		return false
	}
	return alo < bhi && blo < ahi
}

// sameView reports whether a and b start at the same address.
func sameView(a, b []float32) bool {
	alo, _ := span(a)
	blo, _ := span(b)
	return alo != 0 && alo == blo
}
