package tpcl

import (
	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
)

const (
	defaultFontCode    = "A"
	defaultBarcodeCode = "A"
	qrMarker           = "T"
)

// Bitmap fonts of the TPCL printer family.
var fonts = metadata.FontTable{
	{Code: "A", Label: "Times Roman (Medium) 8pt", Family: "Times Roman", Size: 8, Weight: "normal", Style: "normal"},
	{Code: "B", Label: "Times Roman (Medium) 10pt", Family: "Times Roman", Size: 10, Weight: "normal", Style: "normal"},
	{Code: "C", Label: "Times Roman (Bold) 10pt", Family: "Times Roman", Size: 10, Weight: "bold", Style: "normal"},
	{Code: "D", Label: "Times Roman (Bold) 12pt", Family: "Times Roman", Size: 12, Weight: "bold", Style: "normal"},
	{Code: "E", Label: "Times Roman (Bold) 14pt", Family: "Times Roman", Size: 14, Weight: "bold", Style: "normal"},
	{Code: "F", Label: "Times Roman (Italic) 12pt", Family: "Times Roman", Size: 12, Weight: "normal", Style: "italic"},
	{Code: "G", Label: "Helvetica (Medium) 6pt", Family: "Helvetica", Size: 6, Weight: "normal", Style: "normal"},
	{Code: "H", Label: "Helvetica (Medium) 10pt", Family: "Helvetica", Size: 10, Weight: "normal", Style: "normal"},
	{Code: "I", Label: "Helvetica (Medium) 12pt", Family: "Helvetica", Size: 12, Weight: "normal", Style: "normal"},
	{Code: "J", Label: "Helvetica (Bold) 12pt", Family: "Helvetica", Size: 12, Weight: "bold", Style: "normal"},
	{Code: "K", Label: "Helvetica (Bold) 14pt", Family: "Helvetica", Size: 14, Weight: "bold", Style: "normal"},
	{Code: "L", Label: "Helvetica (Italic) 12pt", Family: "Helvetica", Size: 12, Weight: "normal", Style: "italic"},
	{Code: "M", Label: "Presentation (Bold) 18pt", Family: "Presentation", Size: 18, Weight: "bold", Style: "normal"},
	{Code: "N", Label: "Letter Gothic (Medium) 9.5pt", Family: "Letter Gothic", Size: 9.5, Weight: "normal", Style: "normal"},
	{Code: "O", Label: "Prestige Elite (Medium) 7pt", Family: "Prestige Elite", Size: 7, Weight: "normal", Style: "normal"},
	{Code: "P", Label: "Prestige Elite (Bold) 10pt", Family: "Prestige Elite", Size: 10, Weight: "bold", Style: "normal"},
	{Code: "Q", Label: "Courier (Medium) 10pt", Family: "Courier", Size: 10, Weight: "normal", Style: "normal"},
	{Code: "R", Label: "Courier (Bold) 12pt", Family: "Courier", Size: 12, Weight: "bold", Style: "normal"},
	{Code: "S", Label: "OCR-A 12pt", Family: "OCR-A", Size: 12, Weight: "normal", Style: "normal"},
	{Code: "T", Label: "OCR-B 12pt", Family: "OCR-B", Size: 12, Weight: "normal", Style: "normal"},
}

var barcodes = metadata.BarcodeTable{
	{Code: "A", Label: "CODE128", Symbology: models.SymbologyCode128},
	{Code: "3", Label: "CODE39", Symbology: models.SymbologyCode39},
	{Code: "5", Label: "JAN13 / EAN13", Symbology: models.SymbologyEAN13},
	{Code: "0", Label: "JAN8 / EAN8", Symbology: models.SymbologyEAN8},
	{Code: "K", Label: "UPC-A", Symbology: models.SymbologyUPCA},
	{Code: "6", Label: "UPC-E", Symbology: models.SymbologyUPCE},
	{Code: qrMarker, Label: "QR Code"},
}
