package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dir stores images as plain files under a root directory. The server
// exposes the directory over HTTP, so key "faces/x.jpg" becomes
// "<baseURL>/faces/x.jpg".
type Dir struct {
	root    string
	baseURL string
}

func NewDir(root, baseURL string) *Dir {
	return &Dir{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *Dir) Put(_ context.Context, key string, r io.Reader) (string, error) {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("imagestore mkdir: %w", err)
	}

	// Write to a temp file then rename so readers never see a partial
	// image, including during a reference overwrite.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("imagestore temp: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("imagestore write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("imagestore close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("imagestore rename %s: %w", key, err)
	}

	return d.URL(key), nil
}

func (d *Dir) URL(key string) string {
	return d.baseURL + "/" + key
}
