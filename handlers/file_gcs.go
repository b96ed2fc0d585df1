package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSPhotoStore keeps photo blobs in a Google Cloud Storage bucket, named
// by the GCS_BUCKET env var.
type GCSPhotoStore struct {
	client *storage.Client
	bucket string
}

// NewGCSPhotoStore connects to GCS using application default credentials.
func NewGCSPhotoStore() (*GCSPhotoStore, error) {
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is not set")
	}
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSPhotoStore{client: client, bucket: bucket}, nil
}

func objectName(caseID, filename string) string {
	return fmt.Sprintf("insurance_photos/%s/%s", caseID, filename)
}

func (s *GCSPhotoStore) Save(ctx context.Context, caseID, filename string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName(caseID, filename))
	wc := obj.NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("upload to gcs: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs upload: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName(caseID, filename)), nil
}

func (s *GCSPhotoStore) Open(ctx context.Context, caseID, filename string) (io.ReadCloser, error) {
	return s.client.Bucket(s.bucket).Object(objectName(caseID, filename)).NewReader(ctx)
}

func (s *GCSPhotoStore) Delete(ctx context.Context, caseID, filename string) error {
	err := s.client.Bucket(s.bucket).Object(objectName(caseID, filename)).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (s *GCSPhotoStore) DeleteCase(ctx context.Context, caseID string) error {
	bucket := s.client.Bucket(s.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: fmt.Sprintf("insurance_photos/%s/", caseID)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
			return err
		}
	}
}
