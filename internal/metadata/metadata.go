// Package metadata holds the font and barcode code tables each printer
// protocol exposes, with lookups in both directions.
package metadata

import (
	"strings"

	"github.com/label-designer/backend/internal/models"
)

// Font maps a protocol font code to its typography.
type Font struct {
	Code   string  `json:"code" msgpack:"code"`
	Label  string  `json:"label" msgpack:"label"`
	Family string  `json:"family" msgpack:"family"`
	Size   float64 `json:"size" msgpack:"size"`
	Weight string  `json:"weight" msgpack:"weight"`
	Style  string  `json:"style" msgpack:"style"`
}

// Barcode maps a protocol barcode code to a symbology.
type Barcode struct {
	Code      string           `json:"code" msgpack:"code"`
	Label     string           `json:"label" msgpack:"label"`
	Symbology models.Symbology `json:"symbology,omitempty" msgpack:"symbology,omitempty"`
}

// FontTable is an ordered, read-only list of fonts.
type FontTable []Font

// CodeFor returns the code whose typography matches exactly, or fallback.
// Family, weight and style compare case-insensitively.
func (t FontTable) CodeFor(family string, size float64, weight, style, fallback string) string {
	for _, f := range t {
		if strings.EqualFold(f.Family, family) &&
			f.Size == size &&
			strings.EqualFold(f.Weight, weight) &&
			strings.EqualFold(f.Style, style) {
			return f.Code
		}
	}
	return fallback
}

// Lookup returns the font for code, or the first entry when code is unknown.
func (t FontTable) Lookup(code string) Font {
	if f, ok := t.Find(code); ok {
		return f
	}
	if len(t) == 0 {
		return Font{}
	}
	return t[0]
}

// Find returns the font for code and whether it exists.
func (t FontTable) Find(code string) (Font, bool) {
	for _, f := range t {
		if f.Code == code {
			return f, true
		}
	}
	return Font{}, false
}

// Clone returns a copy safe for callers to modify.
func (t FontTable) Clone() []Font {
	return append([]Font(nil), t...)
}

// BarcodeTable is an ordered, read-only list of barcode codes.
type BarcodeTable []Barcode

// CodeFor returns the code for a symbology, or fallback.
func (t BarcodeTable) CodeFor(sym models.Symbology, fallback string) string {
	for _, b := range t {
		if b.Symbology != "" && b.Symbology == sym {
			return b.Code
		}
	}
	return fallback
}

// Lookup returns the entry for code and whether it exists.
func (t BarcodeTable) Lookup(code string) (Barcode, bool) {
	for _, b := range t {
		if b.Code == code {
			return b, true
		}
	}
	return Barcode{}, false
}

// Clone returns a copy safe for callers to modify.
func (t BarcodeTable) Clone() []Barcode {
	return append([]Barcode(nil), t...)
}
