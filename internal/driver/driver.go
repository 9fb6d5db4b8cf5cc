// Package driver exposes the protocol codecs behind one interface and
// resolves them by name, protocol tag or file extension.
package driver

import (
	"errors"

	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/tpcl"
	"github.com/label-designer/backend/internal/zpl"
)

// ErrUnknownDriver is returned when no driver matches a lookup.
var ErrUnknownDriver = errors.New("unknown driver")

// Driver defines the contract every printer protocol codec fulfils.
type Driver interface {
	// Name returns the unique name of the driver.
	Name() string
	// Protocol returns the protocol tag templates carry.
	Protocol() models.Protocol
	// Extensions lists the payload file extensions, lowercase with a dot.
	Extensions() []string
	// Encoding names the charset payloads must be transcoded to.
	Encoding() string
	// Fonts returns the font code table.
	Fonts() []metadata.Font
	// Barcodes returns the barcode code table.
	Barcodes() []metadata.Barcode
	// DefaultSettings returns the print settings a new template starts with.
	DefaultSettings() models.PrintSettings
	// Generate renders a template as a command payload.
	Generate(t *models.LabelTemplate) (string, error)
	// Parse decodes a payload. Problems are reported, never fatal.
	Parse(text string, name string) (*models.LabelTemplate, []*models.ParseError)
}

var (
	_ Driver = (*tpcl.Codec)(nil)
	_ Driver = (*zpl.Codec)(nil)
)
