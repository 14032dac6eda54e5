package proc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanNumbered(t *testing.T) {
	folder := t.TempDir()
	for _, name := range []string{"001_first.mp3", "005_fifth.mp3", "extra.mp3", "12_notthree.mp3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644))
	}

	local := ScanNumbered(folder)
	require.Len(t, local, 2)
	assert.Equal(t, filepath.Join(folder, "001_first.mp3"), local[1])
	assert.Equal(t, filepath.Join(folder, "005_fifth.mp3"), local[5])
}

func TestScanNumberedMissingFolder(t *testing.T) {
	assert.Empty(t, ScanNumbered(filepath.Join(t.TempDir(), "nope")))
}

func TestLocalFilesEvictsShortOnes(t *testing.T) {
	folder := t.TempDir()
	long := filepath.Join(folder, "001_long.mp3")
	short := filepath.Join(folder, "002_short.mp3")
	unknown := filepath.Join(folder, "003_unknown.mp3")
	require.NoError(t, os.WriteFile(long, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(short, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(unknown, []byte("x"), 0o644))

	durations := map[string]float64{long: 120, short: 12, unknown: 0}
	probe := func(path string) float64 { return durations[path] }

	files := LocalFiles(folder, 60, probe, lgr.Default())

	// too-short file deleted, unknown duration kept
	assert.Equal(t, []string{long, unknown}, files)
	assert.NoFileExists(t, short)
}
