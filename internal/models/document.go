package models

import (
	"encoding/json"
	"fmt"
)

// TemplateDocument is the serialized form of a LabelTemplate used for
// JSON, YAML and MessagePack. Elements carry a "type" discriminator.
type TemplateDocument struct {
	Name          string            `json:"name" yaml:"name" msgpack:"name"`
	Width         float64           `json:"width" yaml:"width" msgpack:"width"`
	Height        float64           `json:"height" yaml:"height" msgpack:"height"`
	Protocol      Protocol          `json:"protocol,omitempty" yaml:"protocol,omitempty" msgpack:"protocol,omitempty"`
	Elements      []ElementDocument `json:"elements" yaml:"elements" msgpack:"elements"`
	PrintSettings *PrintSettings    `json:"printSettings,omitempty" yaml:"printSettings,omitempty" msgpack:"printSettings,omitempty"`
}

// ElementDocument is the flat union of every element field.
type ElementDocument struct {
	ID       string      `json:"id" yaml:"id" msgpack:"id"`
	Type     ElementKind `json:"type" yaml:"type" msgpack:"type"`
	X        float64     `json:"x" yaml:"x" msgpack:"x"`
	Y        float64     `json:"y" yaml:"y" msgpack:"y"`
	Rotation int         `json:"rotation" yaml:"rotation" msgpack:"rotation"`

	Content    *string `json:"content,omitempty" yaml:"content,omitempty" msgpack:"content,omitempty"`
	Font       string  `json:"font,omitempty" yaml:"font,omitempty" msgpack:"font,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty" msgpack:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty" msgpack:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty" msgpack:"fontWeight,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty" msgpack:"fontStyle,omitempty"`

	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" msgpack:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" msgpack:"height,omitempty"`

	Symbology Symbology `json:"symbology,omitempty" yaml:"symbology,omitempty" msgpack:"symbology,omitempty"`
	Ratio     *float64  `json:"ratio,omitempty" yaml:"ratio,omitempty" msgpack:"ratio,omitempty"`
	ShowText  *bool     `json:"showText,omitempty" yaml:"showText,omitempty" msgpack:"showText,omitempty"`

	Size            int    `json:"size,omitempty" yaml:"size,omitempty" msgpack:"size,omitempty"`
	ErrorCorrection string `json:"errorCorrection,omitempty" yaml:"errorCorrection,omitempty" msgpack:"errorCorrection,omitempty"`

	X2        float64 `json:"x2,omitempty" yaml:"x2,omitempty" msgpack:"x2,omitempty"`
	Y2        float64 `json:"y2,omitempty" yaml:"y2,omitempty" msgpack:"y2,omitempty"`
	Thickness float64 `json:"thickness,omitempty" yaml:"thickness,omitempty" msgpack:"thickness,omitempty"`
}

// ToDocument converts a template into its serialized form.
func ToDocument(t *LabelTemplate) TemplateDocument {
	doc := TemplateDocument{
		Name:          t.Name,
		Width:         t.Width,
		Height:        t.Height,
		Protocol:      t.Protocol,
		Elements:      make([]ElementDocument, 0, len(t.Elements)),
		PrintSettings: t.Settings,
	}
	for _, el := range t.Elements {
		if el == nil {
			continue
		}
		w := &documentWriter{}
		el.Accept(w)
		doc.Elements = append(doc.Elements, w.doc)
	}
	return doc
}

type documentWriter struct {
	doc ElementDocument
}

func (w *documentWriter) base(kind ElementKind, b Base) {
	w.doc.ID = b.ID
	w.doc.Type = kind
	w.doc.X = b.X
	w.doc.Y = b.Y
	w.doc.Rotation = b.Rotation
}

func (w *documentWriter) VisitText(t *Text) {
	w.base(KindText, t.Base)
	w.doc.Content = t.Content
	w.doc.Font = t.Font
	w.doc.FontFamily = t.FontFamily
	w.doc.FontSize = t.FontSize
	w.doc.FontWeight = t.FontWeight
	w.doc.FontStyle = t.FontStyle
	w.doc.Width = t.Width
	w.doc.Height = t.Height
}

func (w *documentWriter) VisitBarcode(b *Barcode) {
	w.base(KindBarcode, b.Base)
	w.doc.Content = StringPtr(b.Content)
	w.doc.Symbology = b.Symbology
	w.doc.Width = b.Width
	w.doc.Height = b.Height
	w.doc.Ratio = b.Ratio
	w.doc.ShowText = b.ShowText
}

func (w *documentWriter) VisitQRCode(q *QRCode) {
	w.base(KindQRCode, q.Base)
	w.doc.Content = StringPtr(q.Content)
	w.doc.Size = q.Size
	w.doc.ErrorCorrection = q.ErrorCorrection
}

func (w *documentWriter) VisitLine(l *Line) {
	w.base(KindLine, l.Base)
	w.doc.X2 = l.X2
	w.doc.Y2 = l.Y2
	w.doc.Thickness = l.Thickness
}

func (w *documentWriter) VisitRectangle(r *Rectangle) {
	w.base(KindRectangle, r.Base)
	w.doc.Width = r.Width
	w.doc.Height = r.Height
	w.doc.Thickness = r.Thickness
}

// FromDocument converts a serialized template back into the domain model.
func FromDocument(doc TemplateDocument) (*LabelTemplate, error) {
	t := &LabelTemplate{
		Name:     doc.Name,
		Width:    doc.Width,
		Height:   doc.Height,
		Protocol: doc.Protocol,
		Elements: make([]Element, 0, len(doc.Elements)),
		Settings: doc.PrintSettings,
	}
	for i, ed := range doc.Elements {
		el, err := ed.Element()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		t.Elements = append(t.Elements, el)
	}
	return t, nil
}

// Element builds the domain element described by the document.
func (d ElementDocument) Element() (Element, error) {
	base := Base{ID: d.ID, X: d.X, Y: d.Y, Rotation: d.Rotation}
	switch d.Type {
	case KindText:
		return &Text{
			Base:       base,
			Content:    d.Content,
			Font:       d.Font,
			FontFamily: d.FontFamily,
			FontSize:   d.FontSize,
			FontWeight: d.FontWeight,
			FontStyle:  d.FontStyle,
			Width:      d.Width,
			Height:     d.Height,
		}, nil
	case KindBarcode:
		return &Barcode{
			Base:      base,
			Content:   deref(d.Content),
			Symbology: d.Symbology,
			Height:    d.Height,
			Width:     d.Width,
			Ratio:     d.Ratio,
			ShowText:  d.ShowText,
		}, nil
	case KindQRCode:
		return &QRCode{
			Base:            base,
			Content:         deref(d.Content),
			Size:            d.Size,
			ErrorCorrection: d.ErrorCorrection,
		}, nil
	case KindLine:
		return &Line{Base: base, X2: d.X2, Y2: d.Y2, Thickness: d.Thickness}, nil
	case KindRectangle:
		return &Rectangle{Base: base, Width: d.Width, Height: d.Height, Thickness: d.Thickness}, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", d.Type)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MarshalJSON encodes the template through its document form.
func (t *LabelTemplate) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToDocument(t))
}

// UnmarshalJSON decodes the template from its document form.
func (t *LabelTemplate) UnmarshalJSON(data []byte) error {
	var doc TemplateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
