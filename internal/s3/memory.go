package s3

import (
	"context"
	"sync"

	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

const memoryBaseURL = "memory://blobs"

type memoryObject struct {
	content     []byte
	contentType string
}

// MemoryService keeps blobs in process memory
type MemoryService struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

func NewMemoryService(baseURL string) *MemoryService {
	if baseURL == "" {
		baseURL = memoryBaseURL
	}
	return &MemoryService{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
	}
}

func (m *MemoryService) Upload(_ context.Context, path string, content []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memoryObject{content: append([]byte(nil), content...), contentType: contentType}
	return nil
}

func (m *MemoryService) GetPublicURL(_ context.Context, path string) (string, error) {
	return joinURL(m.baseURL, path)
}

func (m *MemoryService) GetObject(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, ierr.NewErrorf("file %s not found", path).
			WithHintf("File %s not found", path).
			Mark(ierr.ErrNotFound)
	}
	return append([]byte(nil), obj.content...), nil
}

func (m *MemoryService) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

// ContentType returns the stored content type of path
func (m *MemoryService) ContentType(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[path].contentType
}

// Paths lists every stored path
func (m *MemoryService) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	return paths
}
