package media

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path prefix stored image references start with.
const URLPrefix = "/uploads/"

// DiskStore persists uploaded images on the local filesystem. Every stored
// file gets a random unique prefix so original filenames never collide.
type DiskStore struct {
	baseDir string
}

// NewDiskStore ensures the upload directory exists and returns a store over it.
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory files are written under.
func (s *DiskStore) BaseDir() string {
	return s.baseDir
}

// Save writes the reader's content under a uuid-prefixed filename and returns
// the stable relative path recorded against the stock row.
func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	target := filepath.Join(s.baseDir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("closing image file: %w", err)
	}

	return URLPrefix + name, nil
}

// Remove deletes a previously stored image. Removing a path that no longer
// exists is not an error.
func (s *DiskStore) Remove(relPath string) error {
	name, ok := strings.CutPrefix(relPath, URLPrefix)
	if !ok || name == "" {
		return fmt.Errorf("unexpected image path %q", relPath)
	}
	target := filepath.Join(s.baseDir, filepath.Base(name))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image file: %w", err)
	}
	return nil
}

func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
