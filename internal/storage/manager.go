package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/label-designer/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const documentExt = ".yaml"

// LocalStore implements Store as one YAML document per template in a
// directory, so a library can be kept under version control.
type LocalStore struct {
	mu    sync.RWMutex
	dir   string
	infos map[string]*models.TemplateInfo
}

var _ Store = (*LocalStore)(nil)

// storedDocument is the on-disk form of a template.
type storedDocument struct {
	ID        string                  `yaml:"id"`
	UpdatedAt time.Time               `yaml:"updatedAt"`
	Template  models.TemplateDocument `yaml:"template"`
}

// NewLocalStore creates a LocalStore over dir and indexes existing documents.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating template directory: %w", err)
	}
	s := &LocalStore{dir: dir, infos: make(map[string]*models.TemplateInfo)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), documentExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), documentExt)
		_, info, err := s.read(id)
		if err != nil {
			log.Warn().Str("file", e.Name()).Err(err).Msg("skipping unreadable template")
			continue
		}
		s.infos[id] = info
	}
	return s, nil
}

// Save stores t under a new id.
func (s *LocalStore) Save(_ context.Context, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(uuid.New().String(), t)
}

// Update replaces the template stored under id.
func (s *LocalStore) Update(_ context.Context, id string, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.infos[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.write(id, t)
}

// Get loads the template stored under id.
func (s *LocalStore) Get(_ context.Context, id string) (*models.LabelTemplate, *models.TemplateInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.infos[id]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.read(id)
}

// List returns the most recently updated templates first.
func (s *LocalStore) List(_ context.Context, limit int) ([]*models.TemplateInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.TemplateInfo, 0, len(s.infos))
	for _, info := range s.infos {
		copied := *info
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes the template stored under id.
func (s *LocalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.infos[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting template: %w", err)
	}
	delete(s.infos, id)
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *LocalStore) Close() error {
	return nil
}

// write must be called with the lock held.
func (s *LocalStore) write(id string, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	doc := storedDocument{ID: id, UpdatedAt: time.Now().UTC(), Template: models.ToDocument(t)}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}

	// write then rename so a crash never leaves a truncated document
	tmp := s.path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	if err := os.Rename(tmp, s.path(id)); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("writing template: %w", err)
	}

	info := InfoFor(id, t)
	info.UpdatedAt = doc.UpdatedAt
	s.infos[id] = info
	copied := *info
	return &copied, nil
}

func (s *LocalStore) read(id string) (*models.LabelTemplate, *models.TemplateInfo, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, nil, fmt.Errorf("reading template %s: %w", id, err)
	}
	var doc storedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decoding template %s: %w", id, err)
	}
	tmpl, err := models.FromDocument(doc.Template)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding template %s: %w", id, err)
	}
	info := InfoFor(id, tmpl)
	info.UpdatedAt = doc.UpdatedAt
	return tmpl, info, nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+documentExt)
}
