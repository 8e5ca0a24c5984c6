package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore writes images under Dir and serves them below PublicPath (see gin's Static).
type LocalStore struct {
	Dir        string
	PublicPath string
	now        func() time.Time
}

func NewLocalStore(dir, publicPath string) *LocalStore {
	return &LocalStore{Dir: dir, PublicPath: strings.TrimSuffix(publicPath, "/"), now: time.Now}
}

func (s *LocalStore) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	filename := ObjectName(name, s.now())
	f, err := os.Create(filepath.Join(s.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return s.PublicPath + "/" + filename, nil
}

// Delete removes the file behind url. A file that is already gone is not an error.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.PublicPath+"/") {
		return ErrForeignURL
	}
	path := filepath.Join(s.Dir, filepath.Base(url))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
