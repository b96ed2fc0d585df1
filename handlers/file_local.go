package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const defaultUploadDir = "./uploads"

// LocalPhotoStore keeps photo blobs on the local filesystem, used in
// development and small single-machine deployments.
type LocalPhotoStore struct {
	root string
}

// NewLocalPhotoStore creates a store rooted at dir (defaults to ./uploads).
func NewLocalPhotoStore(dir string) *LocalPhotoStore {
	if dir == "" {
		dir = defaultUploadDir
	}
	return &LocalPhotoStore{root: dir}
}

func (s *LocalPhotoStore) caseDir(caseID string) string {
	return filepath.Join(s.root, "insurance_photos", caseID)
}

func (s *LocalPhotoStore) Save(ctx context.Context, caseID, filename string, r io.Reader) (string, error) {
	dir := s.caseDir(caseID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	// Served by the /uploads/ static route. In production you'd put your
	// domain in front of this.
	return fmt.Sprintf("/uploads/insurance_photos/%s/%s", caseID, filename), nil
}

func (s *LocalPhotoStore) Open(ctx context.Context, caseID, filename string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.caseDir(caseID), filename))
}

func (s *LocalPhotoStore) Delete(ctx context.Context, caseID, filename string) error {
	err := os.Remove(filepath.Join(s.caseDir(caseID), filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalPhotoStore) DeleteCase(ctx context.Context, caseID string) error {
	return os.RemoveAll(s.caseDir(caseID))
}
