package imagestore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/slug"
)

// Memory keeps uploaded images in process memory and serves them under
// baseURL. It backs local development when no Cloudinary account is set.
type Memory struct {
	mu      sync.RWMutex
	files   map[string]File
	baseURL string
	root    string
}

func NewMemory(baseURL, root string) *Memory {
	return &Memory{
		files:   make(map[string]File),
		baseURL: strings.TrimRight(baseURL, "/"),
		root:    root,
	}
}

func (m *Memory) Upload(_ context.Context, folder string, file File) (domain.Image, error) {
	publicID := joinPath(m.root, folder, slug.FromFilename(file.Name))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[publicID] = file

	return domain.Image{
		URL:      fmt.Sprintf("%s/images/%s", m.baseURL, publicID),
		PublicID: publicID,
	}, nil
}

func (m *Memory) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[publicID]; !ok {
		return fmt.Errorf("image not found: %s", publicID)
	}
	delete(m.files, publicID)
	return nil
}

// Get returns a stored file.
func (m *Memory) Get(publicID string) (File, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[publicID]
	return f, ok
}

// Len reports how many images are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func joinPath(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
