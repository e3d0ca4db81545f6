package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestOpen(t *testing.T) {
	content := []byte("0,1.5\n1000,2.5\n")
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)

	assert.Equal(t, len(content), m.Len())
	assert.Equal(t, content, m.Bytes())
	require.NoError(t, m.Advise(Sequential))
	require.NoError(t, m.Advise(Normal))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(Sequential), ErrClosed)
}

func TestOpen_Empty(t *testing.T) {
	m, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Zero(t, m.Len())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(Sequential))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnonymous(t *testing.T) {
	m, err := Anonymous(4096)
	require.NoError(t, err)

	data := m.Bytes()
	require.Len(t, data, 4096)
	for _, b := range data {
		require.Zero(t, b)
	}

	data[0], data[4095] = 0xAB, 0xCD
	assert.Equal(t, byte(0xAB), m.Bytes()[0])
	assert.Equal(t, byte(0xCD), m.Bytes()[4095])

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())

	for _, size := range []int{0, -1} {
		_, err := Anonymous(size)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}
