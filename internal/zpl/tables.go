package zpl

import (
	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
)

const (
	defaultFontCode = "0"
	defaultBarcode  = "BC"
	qrCommand       = "BQ"
)

// Resident fonts. Sizes are the nominal point size at 203 dpi.
var fonts = metadata.FontTable{
	{Code: "0", Label: "Font 0 (scalable CG Triumvirate Bold Condensed)", Family: "Helvetica", Size: 12, Weight: "bold", Style: "normal"},
	{Code: "A", Label: "Font A (9x5 dots)", Family: "Courier", Size: 3, Weight: "normal", Style: "normal"},
	{Code: "B", Label: "Font B (11x7 dots)", Family: "Courier", Size: 4, Weight: "normal", Style: "normal"},
	{Code: "D", Label: "Font D (18x10 dots)", Family: "Courier", Size: 6, Weight: "normal", Style: "normal"},
	{Code: "E", Label: "Font E (28x15 dots, OCR-B)", Family: "OCR-B", Size: 10, Weight: "normal", Style: "normal"},
	{Code: "F", Label: "Font F (26x13 dots)", Family: "Courier", Size: 9, Weight: "normal", Style: "normal"},
	{Code: "G", Label: "Font G (60x40 dots)", Family: "Courier", Size: 21, Weight: "normal", Style: "normal"},
	{Code: "H", Label: "Font H (21x13 dots, OCR-A)", Family: "OCR-A", Size: 7, Weight: "normal", Style: "normal"},
}

var barcodes = metadata.BarcodeTable{
	{Code: "BC", Label: "Code 128", Symbology: models.SymbologyCode128},
	{Code: "B3", Label: "Code 39", Symbology: models.SymbologyCode39},
	{Code: "BE", Label: "EAN-13", Symbology: models.SymbologyEAN13},
	{Code: "B8", Label: "EAN-8", Symbology: models.SymbologyEAN8},
	{Code: "BU", Label: "UPC-A", Symbology: models.SymbologyUPCA},
	{Code: "B9", Label: "UPC-E", Symbology: models.SymbologyUPCE},
	{Code: qrCommand, Label: "QR Code"},
}

// orientations maps rotation 0-3 to the field orientation letter.
var orientations = [4]byte{'N', 'R', 'I', 'B'}

func orientation(rotation int) byte {
	return orientations[models.NormalizeRotation(rotation)]
}

func rotationOf(o string) int {
	if o == "" {
		return 0
	}
	for i, letter := range orientations {
		if o[0] == letter {
			return i
		}
	}
	return 0
}
