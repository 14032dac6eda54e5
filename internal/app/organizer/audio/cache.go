package audio

import (
	"encoding/json"
	"os"

	"github.com/boltdb/bolt"
)

var cacheBucket = []byte("durations")

// Cache keeps probed durations in bolt db keyed by file path, so a no-op
// run doesn't re-decode every episode. Entries are invalidated when the
// file size or mtime changes.
type Cache struct {
	DB *bolt.DB
}

type cacheEntry struct {
	Size     int64   `json:"size"`
	MTime    int64   `json:"mtime"`
	Duration float64 `json:"duration"`
}

// Get returns the cached duration for path if the entry is still fresh.
func (c *Cache) Get(path string, info os.FileInfo) (float64, bool) {
	var entry cacheEntry
	found := false

	err := c.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(cacheBucket)
		if bucket == nil {
			return nil
		}

		item := bucket.Get([]byte(path))
		if item == nil {
			return nil
		}

		if err := json.Unmarshal(item, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if err != nil || !found {
		return 0, false
	}
	if entry.Size != info.Size() || entry.MTime != info.ModTime().UnixNano() {
		return 0, false
	}

	return entry.Duration, true
}

// Put stores the probed duration for path.
func (c *Cache) Put(path string, info os.FileInfo, duration float64) error {
	return c.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(cacheBucket)
		if err != nil {
			return err
		}

		jdata, err := json.Marshal(cacheEntry{
			Size:     info.Size(),
			MTime:    info.ModTime().UnixNano(),
			Duration: duration,
		})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(path), jdata)
	})
}
