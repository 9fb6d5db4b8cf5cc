// Package loader reads and writes label templates as files. Template
// documents are JSON, JSONC or YAML; anything else is handed to the
// driver registered for the file extension.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/label-designer/backend/internal/charset"
	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files no document format or driver
// understands.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Result is a loaded template plus any problems found while decoding it.
type Result struct {
	Template    *models.LabelTemplate
	Diagnostics []*models.ParseError
	// Format is "json", "yaml" or the name of the driver that parsed it.
	Format string
}

// Loader resolves file formats against a driver registry.
type Loader struct {
	registry *driver.Registry
	fallback string
}

// New creates a loader. fallbackCharset decodes payloads that are not
// valid UTF-8.
func New(registry *driver.Registry, fallbackCharset string) *Loader {
	if fallbackCharset == "" {
		fallbackCharset = "windows-1252"
	}
	return &Loader{registry: registry, fallback: fallbackCharset}
}

// LoadFile reads and decodes the file at path.
func (l *Loader) LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.Load(filepath.Base(path), data)
}

// Load decodes data using the extension of fileName to pick the format.
func (l *Loader) Load(fileName string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".json", ".jsonc":
		tmpl, err := decodeJSON(data)
		if err != nil {
			return nil, err
		}
		return &Result{Template: tmpl, Diagnostics: []*models.ParseError{}, Format: FormatJSON}, nil
	case ".yaml", ".yml":
		tmpl, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		return &Result{Template: tmpl, Diagnostics: []*models.ParseError{}, Format: FormatYAML}, nil
	}

	d, err := l.registry.FindDriver(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
	text, err := charset.Decode(data, l.fallback)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	tmpl, diags := d.Parse(text, name)
	if len(diags) > 0 {
		log.Warn().
			Str("file", fileName).
			Str("driver", d.Name()).
			Int("diagnostics", len(diags)).
			Msg("payload decoded with problems")
	}
	return &Result{Template: tmpl, Diagnostics: diags, Format: d.Name()}, nil
}

// Export encodes a template for fileName's extension: a document for
// .json/.yaml/.yml, or a payload in the driver's charset otherwise.
func (l *Loader) Export(t *models.LabelTemplate, fileName string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json", ".jsonc":
		return EncodeJSON(t)
	case ".yaml", ".yml":
		return EncodeYAML(t)
	}
	d, err := l.registry.FindDriver(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
	return Render(d, t)
}

// Render generates a payload with d and transcodes it to d's charset.
func Render(d driver.Driver, t *models.LabelTemplate) ([]byte, error) {
	payload, err := d.Generate(t)
	if err != nil {
		return nil, err
	}
	return charset.Encode(d.Encoding(), payload)
}

// EncodeJSON renders t as an indented JSON document.
func EncodeJSON(t *models.LabelTemplate) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(models.ToDocument(t), "", "  ")
}

// EncodeYAML renders t as a YAML document.
func EncodeYAML(t *models.LabelTemplate) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(models.ToDocument(t))
}

func decodeJSON(data []byte) (*models.LabelTemplate, error) {
	var doc models.TemplateDocument
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode template JSON: %w", err)
	}
	return fromDocument(doc)
}

func decodeYAML(data []byte) (*models.LabelTemplate, error) {
	var doc models.TemplateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode template YAML: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc models.TemplateDocument) (*models.LabelTemplate, error) {
	tmpl, err := models.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}
