package handlers

import (
	"context"
	"io"
	"os"
)

// PhotoStore persists insurance-case photo blobs. Two implementations exist:
// local disk for development and Google Cloud Storage for production.
type PhotoStore interface {
	// Save writes the blob under insurance_photos/{caseID}/{filename} and
	// returns a URL the client can fetch it from.
	Save(ctx context.Context, caseID, filename string, r io.Reader) (string, error)
	// Open returns a reader for a stored photo.
	Open(ctx context.Context, caseID, filename string) (io.ReadCloser, error)
	// Delete removes one photo blob.
	Delete(ctx context.Context, caseID, filename string) error
	// DeleteCase removes every blob belonging to a case.
	DeleteCase(ctx context.Context, caseID string) error
}

// NewPhotoStore picks the backing store from the environment.
// Google Cloud sets GOOGLE_APPLICATION_CREDENTIALS or K_SERVICE (Cloud Run).
func NewPhotoStore() PhotoStore {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""

	if useGCS {
		if store, err := NewGCSPhotoStore(); err == nil {
			return store
		}
		// Fall through to local storage when the GCS client cannot start,
		// better a working dev setup than a dead upload endpoint.
	}
	return NewLocalPhotoStore("")
}
