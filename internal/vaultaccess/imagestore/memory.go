package imagestore

import (
	"context"
	"io"
	"sync"
)

// Mem keeps images in a map. Intended for tests and dev environments.
type Mem struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewMem(baseURL string) *Mem {
	return &Mem{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *Mem) Put(_ context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.URL(key), nil
}

func (m *Mem) URL(key string) string {
	return m.baseURL + "/" + key
}

// Object returns the stored bytes for a key. Test-only helper.
func (m *Mem) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}
