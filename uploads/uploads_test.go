package uploads

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("oil slick.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-oil_slick.jpg"))

	f, err := s.Open(name)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestSave_UniqueNames(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save("photo.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	b, err := s.Save("photo.jpg", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSave_StripsPathComponents(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	name, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}

func TestSweepOrphans(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir)
	require.NoError(t, err)

	kept, err := s.Save("kept.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	orphanOld, err := s.Save("orphan-old.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	orphanFresh, err := s.Save("orphan-fresh.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	// Age the old orphan past the grace period.
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, orphanOld), old, old))

	removed, err := s.SweepOrphans(map[string]bool{kept: true}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Open(kept)
	assert.NoError(t, err)
	_, err = s.Open(orphanFresh)
	assert.NoError(t, err)
	_, err = s.Open(orphanOld)
	assert.Error(t, err)
}
