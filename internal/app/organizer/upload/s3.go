// Package upload mirrors the organized output tree to s3-compatible
// storage, so the card content can be restored to another device.
package upload

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/go-pkgz/lgr"
	"github.com/minio/minio-go/v7"

	"tonorg/internal/fileutil"
)

// S3Store store
type S3Store struct {
	Client   *minio.Client
	Location string
	Bucket   string

	log lgr.L
}

// NewS3Store makes a store around an existing minio client.
func NewS3Store(client *minio.Client, location, bucket string, l lgr.L) *S3Store {
	return &S3Store{Client: client, Location: location, Bucket: bucket, log: l}
}

// UploadTree walks outputRoot and uploads every file, keeping the
// relative path as the object name. Per-file failures are warned about
// and the walk continues.
func (s *S3Store) UploadTree(ctx context.Context, outputRoot string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	uploaded := 0
	err := filepath.WalkDir(outputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		objectName, rerr := filepath.Rel(outputRoot, path)
		if rerr != nil {
			return rerr
		}
		objectName = filepath.ToSlash(objectName)

		if uerr := s.uploadFile(ctx, objectName, path); uerr != nil {
			s.log.Logf("[WARN] can't upload %s to bucket %s, %v", objectName, s.Bucket, uerr)
			return nil
		}
		uploaded++
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Logf("[INFO] uploaded %d file(s) to bucket %s", uploaded, s.Bucket)
	return nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: s.Location})
}

func (s *S3Store) uploadFile(ctx context.Context, objectName, filePath string) error {
	contentType := "application/octet-stream"
	if fileutil.IsMP3(filePath) {
		contentType = "audio/mp3"
	}

	info, err := s.Client.FPutObject(ctx, s.Bucket, objectName, filePath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return err
	}

	s.log.Logf("[INFO] uploaded %s (%s)", objectName, fileutil.FormatSize(info.Size))
	return nil
}
