package organizer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewBoltDB opens (or creates) the bolt file backing the duration cache.
func NewBoltDB(dbFile string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbFile), 0o755); err != nil {
		return nil, err
	}
	return bolt.Open(dbFile, 0o600, &bolt.Options{Timeout: time.Second})
}

// NewS3Client makes a minio client for the configured endpoint.
func NewS3Client(endpoint, key, secret string, ssl bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: ssl,
	})
}
