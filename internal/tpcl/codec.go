// Package tpcl implements the brace-delimited TPCL command language.
//
// Commands look like {TAG;p1,p2,...|}. Positions are tenths of a millimeter
// written as zero-padded four digit fields, so element coordinates in a TPCL
// template are millimeters.
package tpcl

import (
	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
)

// Default label size used when a payload carries no size command.
const (
	DefaultWidthMM  = 100.0
	DefaultHeightMM = 150.0
)

// gapMM is deducted from the pitch to form the effective print length.
const gapMM = 3.0

// Codec generates and parses TPCL payloads. It holds no mutable state.
type Codec struct {
	fonts    metadata.FontTable
	barcodes metadata.BarcodeTable
}

// NewCodec creates a TPCL codec backed by the built-in tables.
func NewCodec() *Codec {
	return &Codec{
		fonts:    fonts,
		barcodes: barcodes,
	}
}

func (c *Codec) Name() string {
	return "tpcl"
}

func (c *Codec) Protocol() models.Protocol {
	return models.ProtocolTPCL
}

func (c *Codec) Extensions() []string {
	return []string{".tpcl"}
}

// Encoding names the 8-bit charset TPCL payloads are sent in.
func (c *Codec) Encoding() string {
	return "windows-1252"
}

func (c *Codec) Fonts() []metadata.Font {
	return c.fonts.Clone()
}

func (c *Codec) Barcodes() []metadata.Barcode {
	return c.barcodes.Clone()
}

func (c *Codec) DefaultSettings() models.PrintSettings {
	return models.DefaultSettings(models.ProtocolTPCL)
}
