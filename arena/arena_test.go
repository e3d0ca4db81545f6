package arena

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
	"unsafe"

	"github.com/hupe1980/kalman/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, capacity int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(capacity, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Free() })
	return a
}

func TestArena_New(t *testing.T) {
	t.Run("mmap backing", func(t *testing.T) {
		a := newTestArena(t, 4096)
		assert.Equal(t, 4096, a.Capacity())
		assert.Equal(t, BackingMmap, a.Stats().Backing)
		assert.Equal(t, 0, a.Offset())
		assert.Equal(t, 0, a.Depth())
	})

	t.Run("heap backing", func(t *testing.T) {
		a := newTestArena(t, 1024, WithHeap())
		assert.Equal(t, BackingHeap, a.Stats().Backing)
		assert.Equal(t, 1024, a.Available())
	})

	t.Run("external backing", func(t *testing.T) {
		buf := make([]byte, 512)
		a := NewFromBytes(buf)
		assert.Equal(t, BackingExternal, a.Stats().Backing)
		assert.Equal(t, 512, a.Capacity())
	})

	t.Run("zero capacity", func(t *testing.T) {
		a := newTestArena(t, 0)
		_, err := a.Alloc(1, 1)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := New(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
}

func TestArena_Alloc(t *testing.T) {
	t.Run("zeroed and aligned", func(t *testing.T) {
		a := newTestArena(t, 1024, WithHeap())

		_, err := a.Alloc(3, 1)
		require.NoError(t, err)

		ref, err := a.Alloc(64, 16)
		require.NoError(t, err)

		b := a.Bytes(ref)
		require.Len(t, b, 64)
		addr := uintptr(unsafe.Pointer(&b[0]))
		assert.Zero(t, addr%16)
		for _, v := range b {
			assert.Zero(t, v)
		}
	})

	t.Run("zeroes reused memory", func(t *testing.T) {
		a := newTestArena(t, 256, WithHeap())

		require.NoError(t, a.PushScope())
		ref, err := a.Alloc(32, 8)
		require.NoError(t, err)
		for i := range a.Bytes(ref) {
			a.Bytes(ref)[i] = 0xFF
		}
		require.NoError(t, a.PopScope())

		ref, err = a.Alloc(32, 8)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 32), a.Bytes(ref))
	})

	t.Run("default alignment", func(t *testing.T) {
		a := newTestArena(t, 256)
		_, err := a.Alloc(1, 0)
		require.NoError(t, err)
		ref, err := a.Alloc(8, 0)
		require.NoError(t, err)
		assert.Equal(t, 8, ref.Offset())
	})

	t.Run("invalid arguments", func(t *testing.T) {
		a := newTestArena(t, 256)
		_, err := a.Alloc(-1, 8)
		assert.ErrorIs(t, err, ErrInvalidSize)
		_, err = a.Alloc(8, 3)
		assert.ErrorIs(t, err, ErrInvalidAlignment)
	})

	t.Run("capacity exceeded leaves offset unchanged", func(t *testing.T) {
		a := newTestArena(t, 64)
		_, err := a.Alloc(40, 8)
		require.NoError(t, err)

		_, err = a.Alloc(32, 8)
		require.ErrorIs(t, err, ErrCapacityExceeded)

		var ce *CapacityError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 32, ce.Requested)
		assert.Equal(t, 40, ce.Offset)
		assert.Equal(t, 64, ce.Capacity)

		assert.Equal(t, 40, a.Offset())
		assert.Equal(t, uint64(1), a.Stats().FailedAllocs)

		_, err = a.Alloc(24, 8)
		assert.NoError(t, err, "the remaining bytes are still usable")
	})
}

func TestArena_Scopes(t *testing.T) {
	a := newTestArena(t, 4096)

	_, err := a.Alloc(100, 4)
	require.NoError(t, err)
	outer := a.Offset()

	require.NoError(t, a.PushScope())
	_, err = a.Alloc(200, 4)
	require.NoError(t, err)
	inner := a.Offset()

	require.NoError(t, a.PushScope())
	_, err = a.Alloc(300, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Depth())

	require.NoError(t, a.PopScope())
	assert.Equal(t, inner, a.Offset())

	require.NoError(t, a.PopScope())
	assert.Equal(t, outer, a.Offset())
	assert.Equal(t, 600, a.Peak())

	assert.ErrorIs(t, a.PopScope(), ErrScopeUnderflow)
	assert.ErrorIs(t, a.PopScope(), ErrScopeImbalance)
}

func TestArena_ScopeOverflow(t *testing.T) {
	a := newTestArena(t, 64)

	for range MaxScopeDepth {
		require.NoError(t, a.PushScope())
	}
	err := a.PushScope()
	assert.ErrorIs(t, err, ErrScopeOverflow)
	assert.ErrorIs(t, err, ErrScopeImbalance)
	assert.Equal(t, MaxScopeDepth, a.Depth())

	for range MaxScopeDepth {
		require.NoError(t, a.PopScope())
	}
}

// TestArena_ScopingProperty drives random push/alloc/pop sequences and checks
// that every pop restores the offset recorded at its push.
func TestArena_ScopingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := newTestArena(t, 1<<20, WithHeap())

	for iter := 0; iter < 200; iter++ {
		var marks []int
		for step := 0; step < 64; step++ {
			switch op := rng.Intn(3); {
			case op == 0 && len(marks) < MaxScopeDepth:
				marks = append(marks, a.Offset())
				require.NoError(t, a.PushScope())
			case op == 1 && len(marks) > 0:
				require.NoError(t, a.PopScope())
				want := marks[len(marks)-1]
				marks = marks[:len(marks)-1]
				require.Equal(t, want, a.Offset())
			default:
				before := a.Offset()
				size := rng.Intn(64)
				ref, err := a.Alloc(size, 1<<rng.Intn(4))
				require.NoError(t, err)
				require.GreaterOrEqual(t, a.Offset(), before, "offset is monotonic inside a scope")
				require.Equal(t, ref.Offset()+size, a.Offset())
			}
		}
		for len(marks) > 0 {
			require.NoError(t, a.PopScope())
			want := marks[len(marks)-1]
			marks = marks[:len(marks)-1]
			require.Equal(t, want, a.Offset())
		}
		a.Reset()
	}
}

func TestArena_StaleRefs(t *testing.T) {
	a := newTestArena(t, 1024)

	root, err := a.Alloc(8, 8)
	require.NoError(t, err)

	require.NoError(t, a.PushScope())
	scoped, err := a.Alloc(8, 8)
	require.NoError(t, err)
	assert.True(t, a.Valid(root))
	assert.True(t, a.Valid(scoped))
	assert.Equal(t, 1, scoped.Depth())
	require.NoError(t, a.PopScope())

	assert.True(t, a.Valid(root))
	assert.False(t, a.Valid(scoped))
	assert.Nil(t, a.Bytes(scoped))
	assert.ErrorIs(t, a.Check(scoped), ErrStaleRef)

	// A new scope at the same level does not revive old refs.
	require.NoError(t, a.PushScope())
	again, err := a.Alloc(8, 8)
	require.NoError(t, err)
	assert.Equal(t, scoped.Offset(), again.Offset())
	assert.False(t, a.Valid(scoped))
	assert.True(t, a.Valid(again))
	require.NoError(t, a.PopScope())

	a.Reset()
	assert.False(t, a.Valid(root))
	assert.False(t, a.Valid(Ref{}))
	assert.True(t, Ref{}.IsZero())
}

func TestArena_StampsDoNotWrapAt32Bits(t *testing.T) {
	a := newTestArena(t, 1024)

	require.NoError(t, a.PushScope())
	old, err := a.Alloc(8, 8)
	require.NoError(t, err)
	require.NoError(t, a.PopScope())

	// Advance the counter so that the next push lands exactly 2^32 stamps
	// after the one old was allocated under.
	a.nextStamp = old.stamp + math.MaxUint32
	require.NoError(t, a.PushScope())
	assert.Equal(t, old.stamp+1<<32, a.stamps[1])
	assert.False(t, a.Valid(old))

	cur, err := a.Alloc(8, 8)
	require.NoError(t, err)
	assert.True(t, a.Valid(cur))
	require.NoError(t, a.PopScope())
}

func TestArena_Poison(t *testing.T) {
	buf := make([]byte, 128)
	a := NewFromBytes(buf, WithPoison(true))

	require.NoError(t, a.PushScope())
	ref, err := a.Alloc(16, 8)
	require.NoError(t, err)
	off := ref.Offset()
	require.NoError(t, a.PopScope())

	for _, b := range buf[off : off+16] {
		assert.Equal(t, byte(PoisonByte), b)
	}

	_, err = a.Alloc(16, 8)
	require.NoError(t, err)
	a.Reset()
	for _, b := range buf[:16] {
		assert.Equal(t, byte(PoisonByte), b)
	}
}

func TestArena_Scope(t *testing.T) {
	a := newTestArena(t, 256)

	boom := errors.New("boom")
	err := a.Scope(func() error {
		_, err := a.Alloc(64, 8)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, 0, a.Depth())

	err = a.Scope(func() error {
		return a.PopScope()
	})
	assert.ErrorIs(t, err, ErrScopeUnderflow, "unbalanced body surfaces the pop error")
}

func TestArena_MakeSlice(t *testing.T) {
	a := newTestArena(t, 1024)

	f, ref, err := a.AllocFloat32s(4)
	require.NoError(t, err)
	require.Len(t, f, 4)
	f[3] = 2.5
	assert.Equal(t, float32(2.5), a.Float32s(ref)[3])

	piv, pref, err := MakeSlice[int](a, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, piv)
	assert.Equal(t, 3*int(unsafe.Sizeof(int(0))), pref.Size())

	empty, _, err := MakeSlice[float64](a, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, _, err = MakeSlice[int](a, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestArena_MemoryAcquirer(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8192})

	a, err := New(4096, WithMemoryAcquirer(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), rc.MemoryUsage())

	_, err = New(8192, WithMemoryAcquirer(rc), WithAcquireTimeout(10*time.Millisecond))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(4096), rc.MemoryUsage())

	require.NoError(t, a.Free())
	require.NoError(t, a.Free())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestArena_Closed(t *testing.T) {
	a, err := New(64)
	require.NoError(t, err)
	ref, err := a.Alloc(8, 8)
	require.NoError(t, err)
	require.NoError(t, a.Free())

	assert.True(t, a.Closed())
	assert.False(t, a.Valid(ref))
	assert.ErrorIs(t, a.Check(ref), ErrClosed)
	_, err = a.Alloc(8, 8)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.PushScope(), ErrClosed)
	assert.ErrorIs(t, a.PopScope(), ErrClosed)
}

func TestArena_Stats(t *testing.T) {
	a := newTestArena(t, 1000)

	require.NoError(t, a.PushScope())
	_, err := a.Alloc(500, 1)
	require.NoError(t, err)
	require.NoError(t, a.PopScope())
	a.Reset()

	s := a.Stats()
	assert.Equal(t, 1000, s.Capacity)
	assert.Equal(t, 500, s.Peak)
	assert.Equal(t, uint64(1), s.Allocs)
	assert.Equal(t, uint64(1), s.ScopePushes)
	assert.Equal(t, uint64(1), s.ScopePops)
	assert.Equal(t, uint64(1), s.Resets)
	assert.InDelta(t, 0.5, s.Utilization(), 1e-9)
	assert.Contains(t, a.String(), "peak: 500")
}
