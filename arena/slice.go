package arena

import "unsafe"

// MakeSlice allocates a zeroed []T of length n.
//
// T must not contain Go pointers: arena memory is invisible to the garbage
// collector.
func MakeSlice[T any](a *Arena, n int) ([]T, Ref, error) {
	if n < 0 {
		return nil, Ref{}, ErrInvalidSize
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	ref, err := a.Alloc(size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, Ref{}, err
	}
	return Slice[T](a, ref), ref, nil
}

// Slice resolves ref as a []T. It returns nil for stale refs.
func Slice[T any](a *Arena, ref Ref) []T {
	if !a.Valid(ref) {
		return nil
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 || ref.size < elem {
		return []T{}
	}
	n := ref.size / elem
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[ref.off])), n) //nolint:gosec // unsafe is required for arena implementation
}

// AllocFloat32s allocates a zeroed []float32 of length n.
func (a *Arena) AllocFloat32s(n int) ([]float32, Ref, error) {
	return MakeSlice[float32](a, n)
}

// Float32s resolves ref as a []float32. It returns nil for stale refs.
func (a *Arena) Float32s(ref Ref) []float32 {
	return Slice[float32](a, ref)
}
