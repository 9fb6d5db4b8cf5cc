package models

// ElementKind is the variant tag of a label element.
type ElementKind string

const (
	KindText      ElementKind = "text"
	KindBarcode   ElementKind = "barcode"
	KindQRCode    ElementKind = "qrcode"
	KindLine      ElementKind = "line"
	KindRectangle ElementKind = "rectangle"
)

// Symbology is a supported linear barcode type.
type Symbology string

const (
	SymbologyCode128 Symbology = "code128"
	SymbologyCode39  Symbology = "code39"
	SymbologyEAN13   Symbology = "ean13"
	SymbologyEAN8    Symbology = "ean8"
	SymbologyUPCA    Symbology = "upca"
	SymbologyUPCE    Symbology = "upce"
)

// QR error-correction levels.
const (
	QRErrorLow      = "L"
	QRErrorMedium   = "M"
	QRErrorQuartile = "Q"
	QRErrorHigh     = "H"
)

// Element is a placed label field. The set of implementations is closed;
// codecs dispatch through Accept so a new variant must be handled everywhere.
type Element interface {
	ElementID() string
	Kind() ElementKind
	Origin() (x, y float64)
	Accept(v ElementVisitor)
	element()
}

// ElementVisitor has one method per element variant.
type ElementVisitor interface {
	VisitText(*Text)
	VisitBarcode(*Barcode)
	VisitQRCode(*QRCode)
	VisitLine(*Line)
	VisitRectangle(*Rectangle)
}

// Base holds the fields shared by every element.
// Rotation is 0-3 for 0/90/180/270 degrees clockwise.
type Base struct {
	ID       string
	X        float64
	Y        float64
	Rotation int
}

func (b *Base) ElementID() string      { return b.ID }
func (b *Base) Origin() (x, y float64) { return b.X, b.Y }
func (b *Base) element()               {}

// Text is a run of printed characters.
// Content nil means the element has no content at all, which differs from "".
type Text struct {
	Base
	Content    *string
	Font       string
	FontFamily string
	FontSize   float64
	FontWeight string
	FontStyle  string
	Width      float64
	Height     float64
}

func (t *Text) Kind() ElementKind         { return KindText }
func (t *Text) Accept(v ElementVisitor) { v.VisitText(t) }

// HasContent reports whether the content property is present.
func (t *Text) HasContent() bool { return t.Content != nil }

// Value returns the content or "" when absent.
func (t *Text) Value() string {
	if t.Content == nil {
		return ""
	}
	return *t.Content
}

// Barcode is a linear barcode; Width is the narrow-bar size.
type Barcode struct {
	Base
	Content   string
	Symbology Symbology
	Height    float64
	Width     float64
	Ratio     *float64
	ShowText  *bool
}

func (b *Barcode) Kind() ElementKind         { return KindBarcode }
func (b *Barcode) Accept(v ElementVisitor) { v.VisitBarcode(b) }

// QRCode is a 2D QR symbol; Size is the module magnification.
type QRCode struct {
	Base
	Content         string
	Size            int
	ErrorCorrection string
}

func (q *QRCode) Kind() ElementKind         { return KindQRCode }
func (q *QRCode) Accept(v ElementVisitor) { v.VisitQRCode(q) }

// Line runs from (X, Y) to (X2, Y2).
type Line struct {
	Base
	X2        float64
	Y2        float64
	Thickness float64
}

func (l *Line) Kind() ElementKind         { return KindLine }
func (l *Line) Accept(v ElementVisitor) { v.VisitLine(l) }

// Rectangle is an outlined box anchored at its top-left corner.
type Rectangle struct {
	Base
	Width     float64
	Height    float64
	Thickness float64
}

func (r *Rectangle) Kind() ElementKind         { return KindRectangle }
func (r *Rectangle) Accept(v ElementVisitor) { v.VisitRectangle(r) }

// NormalizeRotation maps any integer onto 0-3 (modulo 4).
func NormalizeRotation(r int) int {
	return ((r % 4) + 4) % 4
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }
