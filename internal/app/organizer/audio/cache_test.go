package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "cache.bdb"), 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Cache{DB: db}
}

func TestCachePutGet(t *testing.T) {
	cache := openTestCache(t)

	file := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0o644))
	info, err := os.Stat(file)
	require.NoError(t, err)

	_, ok := cache.Get(file, info)
	assert.False(t, ok)

	require.NoError(t, cache.Put(file, info, 123.5))

	d, ok := cache.Get(file, info)
	require.True(t, ok)
	assert.Equal(t, 123.5, d)
}

func TestCacheStaleEntry(t *testing.T) {
	cache := openTestCache(t)

	file := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(file, []byte("data"), 0o644))
	info, err := os.Stat(file)
	require.NoError(t, err)
	require.NoError(t, cache.Put(file, info, 60.0))

	// grow the file, entry must be invalidated
	require.NoError(t, os.WriteFile(file, []byte("data-grown"), 0o644))
	info, err = os.Stat(file)
	require.NoError(t, err)

	_, ok := cache.Get(file, info)
	assert.False(t, ok)
}
