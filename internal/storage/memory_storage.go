package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryImageStore keeps images in memory.
// This is for tests and simulation runs without a writable upload directory.
type MemoryImageStore struct {
	mu     sync.Mutex
	images map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{images: make(map[string][]byte)}
}

func (m *MemoryImageStore) Save(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("img_%s_%s%s", sanitize(prefix), uuid.New().String(), extensionFor(contentType))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = append([]byte(nil), data...)
	return name, nil
}

func (m *MemoryImageStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, name)
	return nil
}

func (m *MemoryImageStore) Open(name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.images[name]
	if !ok {
		return nil, fmt.Errorf("failed to open image %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Names lists the stored image names in order.
func (m *MemoryImageStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.images))
	for name := range m.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
