// mock_storage.go - In-memory template store for handler tests
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/storage"
)

// MockStorage implements storage.Store in memory.
type MockStorage struct {
	mu        sync.RWMutex
	templates map[string]models.TemplateDocument
	infos     map[string]*models.TemplateInfo

	// FailNext, when set, is returned by the next call and then cleared.
	FailNext error
}

var _ storage.Store = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		templates: make(map[string]models.TemplateDocument),
		infos:     make(map[string]*models.TemplateInfo),
	}
}

// ErrMockFailure is a convenient value for FailNext.
var ErrMockFailure = errors.New("mock storage failure")

func (m *MockStorage) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MockStorage) Save(ctx context.Context, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	return m.put(generateTestID(), t)
}

func (m *MockStorage) Update(ctx context.Context, id string, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	if _, ok := m.infos[id]; !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return m.put(id, t)
}

func (m *MockStorage) Get(ctx context.Context, id string) (*models.LabelTemplate, *models.TemplateInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.infos[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	tmpl, err := models.FromDocument(m.templates[id])
	if err != nil {
		return nil, nil, err
	}
	copied := *info
	return tmpl, &copied, nil
}

func (m *MockStorage) List(ctx context.Context, limit int) ([]*models.TemplateInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*models.TemplateInfo, 0, len(m.infos))
	for _, info := range m.infos {
		copied := *info
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.infos[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.infos, id)
	delete(m.templates, id)
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

// Count returns the number of stored templates.
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.infos)
}

// put must be called with the lock held.
func (m *MockStorage) put(id string, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	info := storage.InfoFor(id, t)
	info.UpdatedAt = time.Now()
	m.infos[id] = info
	m.templates[id] = models.ToDocument(t)
	copied := *info
	return &copied, nil
}

var (
	testIDCounter int
	testIDMutex   sync.Mutex
)

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
