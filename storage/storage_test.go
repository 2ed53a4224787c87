package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReadDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	handle, err := s.Save([]byte("%PDF-1.3 fake"))
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	got, err := s.Read(handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3 fake"), got)

	assert.Equal(t, "/api/v1/files/"+handle, s.URL(handle))

	require.NoError(t, s.Delete(handle))
	_, err = s.Read(handle)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, s.URL(handle))

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(handle))
}

func TestHandlesAreOpaque(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := s.Save([]byte("a"))
	require.NoError(t, err)
	second, err := s.Save([]byte("a"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "identical content still gets distinct handles")
}

func TestRejectsNonHandlePaths(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, h := range []string{"../../etc/passwd", "not-a-uuid", ""} {
		_, err := s.Read(h)
		assert.ErrorIs(t, err, os.ErrNotExist, h)
	}
}
