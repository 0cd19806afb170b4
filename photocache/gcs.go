package photocache

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// GCSBlobStore serves photo blobs out of a Cloud Storage bucket.  Download
// URLs are V4 signed URLs whose validity matches the cache retention window,
// so a URL served from an unexpired cache entry is still fetchable.
type GCSBlobStore struct {
	bucket *storage.BucketHandle
}

func NewGCSBlobStore(client *storage.Client, bucketName string) *GCSBlobStore {
	return &GCSBlobStore{
		bucket: client.Bucket(bucketName),
	}
}

func (s *GCSBlobStore) DownloadURL(ctx context.Context, path string) (string, error) {
	url, err := s.bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(cacheExpiryDays * 24 * time.Hour),
	})
	if err != nil {
		return "", fmt.Errorf("while signing URL for object %q: %w", path, err)
	}
	return url, nil
}

func (s *GCSBlobStore) Upload(ctx context.Context, path string, data []byte) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("while writing object %q: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while finalizing object %q: %w", path, err)
	}
	return nil
}

func (s *GCSBlobStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting object %q: %w", path, err)
	}
	return nil
}
