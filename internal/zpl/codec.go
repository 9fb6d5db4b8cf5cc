// Package zpl implements the caret-delimited ZPL command language.
//
// Element coordinates and sizes in a ZPL template are printer dots. The
// template's own width and height stay in millimeters and are converted
// with the resolution from the print settings, or the codec default.
package zpl

import (
	"math"

	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
)

// Default label size used when a payload gives no way to size the label.
const (
	DefaultWidthMM  = 100.0
	DefaultHeightMM = 150.0
)

const mmPerInch = 25.4

// ascentRatio estimates the baseline offset of a glyph from its cell height.
const ascentRatio = 0.8

// Codec generates and parses ZPL payloads. It holds no mutable state.
type Codec struct {
	dpi      int
	fonts    metadata.FontTable
	barcodes metadata.BarcodeTable
}

// NewCodec creates a ZPL codec whose default resolution is dpi.
// A non-positive dpi selects models.DefaultDPI.
func NewCodec(dpi int) *Codec {
	if dpi <= 0 {
		dpi = models.DefaultDPI
	}
	return &Codec{
		dpi:      dpi,
		fonts:    fonts,
		barcodes: barcodes,
	}
}

func (c *Codec) Name() string {
	return "zpl"
}

func (c *Codec) Protocol() models.Protocol {
	return models.ProtocolZPL
}

func (c *Codec) Extensions() []string {
	return []string{".zpl"}
}

// Encoding names the charset of generated payloads; ^CI28 selects UTF-8.
func (c *Codec) Encoding() string {
	return "utf-8"
}

// DPI returns the configured default resolution.
func (c *Codec) DPI() int {
	return c.dpi
}

func (c *Codec) Fonts() []metadata.Font {
	return c.fonts.Clone()
}

func (c *Codec) Barcodes() []metadata.Barcode {
	return c.barcodes.Clone()
}

func (c *Codec) DefaultSettings() models.PrintSettings {
	s := models.DefaultSettings(models.ProtocolZPL)
	s.Resolution = models.IntPtr(c.dpi)
	return s
}

// dotsPerMM converts a resolution in dots per inch to dots per millimeter.
func dotsPerMM(dpi int) float64 {
	return float64(dpi) / mmPerInch
}

func round(v float64) int {
	return int(math.Round(v))
}

func ascent(height int) int {
	return round(float64(height) * ascentRatio)
}
