// Package storage persists the template library.
package storage

import (
	"context"
	"errors"

	"github.com/label-designer/backend/internal/models"
)

// ErrNotFound is returned when no template has the requested id.
var ErrNotFound = errors.New("template not found")

// Store defines the interface for template storage.
type Store interface {
	Save(ctx context.Context, t *models.LabelTemplate) (*models.TemplateInfo, error)
	Update(ctx context.Context, id string, t *models.LabelTemplate) (*models.TemplateInfo, error)
	Get(ctx context.Context, id string) (*models.LabelTemplate, *models.TemplateInfo, error)
	List(ctx context.Context, limit int) ([]*models.TemplateInfo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// InfoFor summarizes a template under id.
func InfoFor(id string, t *models.LabelTemplate) *models.TemplateInfo {
	return &models.TemplateInfo{
		ID:           id,
		Name:         t.Name,
		Protocol:     t.Protocol,
		Width:        t.Width,
		Height:       t.Height,
		ElementCount: len(t.Elements),
	}
}
