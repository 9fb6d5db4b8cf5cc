package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/label-designer/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog/log"
)

// DuckOptions tunes the embedded database.
type DuckOptions struct {
	Threads     int
	MemoryLimit string
}

// DuckStore keeps templates in a DuckDB file, one row per template with the
// document stored as JSON.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

var _ Store = (*DuckStore)(nil)

// NewDuckStore opens or creates the template database in dataDir.
func NewDuckStore(dataDir string, opts DuckOptions) (*DuckStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewDuckStoreAtPath(filepath.Join(dataDir, "templates.duckdb"), opts)
}

// NewDuckStoreAtPath opens or creates the template database at dbPath.
func NewDuckStoreAtPath(dbPath string, opts DuckOptions) (*DuckStore, error) {
	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			id            VARCHAR PRIMARY KEY,
			name          VARCHAR NOT NULL,
			protocol      VARCHAR NOT NULL,
			width         DOUBLE NOT NULL,
			height        DOUBLE NOT NULL,
			element_count INTEGER NOT NULL,
			document      VARCHAR NOT NULL,
			updated_at    TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("template store opened")
	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Save stores t under a new id.
func (s *DuckStore) Save(ctx context.Context, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	doc, err := encode(t)
	if err != nil {
		return nil, err
	}
	info := InfoFor(uuid.New().String(), t)
	info.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, protocol, width, height, element_count, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, string(info.Protocol), info.Width, info.Height, info.ElementCount, doc, info.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting template: %w", err)
	}
	return info, nil
}

// Update replaces the template stored under id.
func (s *DuckStore) Update(ctx context.Context, id string, t *models.LabelTemplate) (*models.TemplateInfo, error) {
	doc, err := encode(t)
	if err != nil {
		return nil, err
	}
	info := InfoFor(id, t)
	info.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = ?, protocol = ?, width = ?, height = ?, element_count = ?, document = ?, updated_at = ?
		WHERE id = ?`,
		info.Name, string(info.Protocol), info.Width, info.Height, info.ElementCount, doc, info.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("updating template: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info, nil
}

// Get loads the template stored under id.
func (s *DuckStore) Get(ctx context.Context, id string) (*models.LabelTemplate, *models.TemplateInfo, error) {
	var (
		info     models.TemplateInfo
		protocol string
		doc      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, protocol, width, height, element_count, document, updated_at
		FROM templates WHERE id = ?`, id).
		Scan(&info.ID, &info.Name, &protocol, &info.Width, &info.Height, &info.ElementCount, &doc, &info.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying template: %w", err)
	}
	info.Protocol = models.Protocol(protocol)

	var tmpl models.LabelTemplate
	if err := json.Unmarshal([]byte(doc), &tmpl); err != nil {
		return nil, nil, fmt.Errorf("decoding stored template %s: %w", id, err)
	}
	return &tmpl, &info, nil
}

// List returns the most recently updated templates first.
func (s *DuckStore) List(ctx context.Context, limit int) ([]*models.TemplateInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, protocol, width, height, element_count, updated_at
		FROM templates ORDER BY updated_at DESC, name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	list := make([]*models.TemplateInfo, 0)
	for rows.Next() {
		var (
			info     models.TemplateInfo
			protocol string
		)
		if err := rows.Scan(&info.ID, &info.Name, &protocol, &info.Width, &info.Height, &info.ElementCount, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		info.Protocol = models.Protocol(protocol)
		list = append(list, &info)
	}
	return list, rows.Err()
}

// Delete removes the template stored under id.
func (s *DuckStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close releases the database.
func (s *DuckStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.dbPath, err)
	}
	log.Info().Str("path", s.dbPath).Msg("template store closed")
	return nil
}

func encode(t *models.LabelTemplate) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding template: %w", err)
	}
	return string(data), nil
}

// now is truncated to microseconds, the resolution of a DuckDB TIMESTAMP.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
