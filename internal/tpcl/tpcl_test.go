package tpcl

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/label-designer/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helloTemplate() *models.LabelTemplate {
	t := models.NewLabelTemplate("hello", 100, 150, models.ProtocolTPCL)
	t.Elements = []models.Element{
		&models.Text{
			Base:       models.Base{ID: "greeting", X: 25.3, Y: 35.5},
			Content:    models.StringPtr("Hello"),
			FontFamily: "Helvetica",
			FontSize:   10,
			FontWeight: "normal",
			FontStyle:  "normal",
			Width:      1,
			Height:     1,
		},
	}
	return t
}

func mixedTemplate() *models.LabelTemplate {
	t := models.NewLabelTemplate("mixed", 60, 40, models.ProtocolTPCL)
	t.Settings.Quantity = 3
	t.Elements = []models.Element{
		&models.Barcode{
			Base:      models.Base{ID: "sku", X: 5, Y: 20, Rotation: 1},
			Content:   "ABC-123",
			Symbology: models.SymbologyCode39,
			Height:    12.5,
			Width:     3,
			ShowText:  models.BoolPtr(true),
		},
		&models.Text{
			Base:       models.Base{ID: "title", X: 2, Y: 3, Rotation: 2},
			Content:    models.StringPtr("Widget"),
			FontFamily: "Helvetica",
			FontSize:   12,
			FontWeight: "bold",
			FontStyle:  "normal",
			Width:      1.5,
			Height:     2,
		},
		&models.QRCode{
			Base:            models.Base{ID: "link", X: 40, Y: 5},
			Content:         "https://example.com/w?id=1",
			Size:            4,
			ErrorCorrection: models.QRErrorHigh,
		},
		&models.Line{Base: models.Base{ID: "rule", X: 0, Y: 18}, X2: 60, Y2: 18, Thickness: 2},
		&models.Rectangle{Base: models.Base{ID: "frame", X: 1, Y: 1}, Width: 58, Height: 38, Thickness: 1},
	}
	return t
}

func generate(t *testing.T, tmpl *models.LabelTemplate) string {
	t.Helper()
	out, err := NewCodec().Generate(tmpl)
	require.NoError(t, err)
	return out
}

func TestGenerateConcreteExample(t *testing.T) {
	out := generate(t, helloTemplate())

	assert.True(t, strings.HasSuffix(out, "\r\n"), "payload must end with a line terminator")
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Equal(t, []string{
		"{C|}",
		"{D1500,1000,1470|}",
		"{AX;+000,+000,+00|}",
		"{AY;+00,0|}",
		"{PC000;0253,0355,10,10,H,00,B|}",
		"{RC000;Hello|}",
		"{XS;I,0001,0002C3000|}",
	}, lines)
}

func TestGenerateDefinitionsBeforeData(t *testing.T) {
	out := generate(t, mixedTemplate())

	lastDefinition := -1
	firstData := len(out)
	for _, tag := range []string{"{PC", "{XB"} {
		if i := strings.LastIndex(out, tag); i > lastDefinition {
			lastDefinition = i
		}
	}
	for _, tag := range []string{"{RC", "{RB"} {
		if i := strings.Index(out, tag); i >= 0 && i < firstData {
			firstData = i
		}
	}
	require.GreaterOrEqual(t, lastDefinition, 0)
	assert.Less(t, lastDefinition, firstData, "all definitions must precede data")
	assert.Less(t, strings.Index(out, "{RB"), strings.Index(out, "{LC"), "graphics come after data")

	// the text sits at index 1 and keeps that field number
	assert.Contains(t, out, "{PC001;0020,0030,15,20,J,22,B|}")
	assert.Contains(t, out, "{RC001;Widget|}")
	assert.Contains(t, out, "{XB00;0050,0200,3,3,03,1,0125,+0000000000,1,00,0|}")
	assert.Contains(t, out, "{XB01;0400,0050,T,H,04,A,0|}")
	assert.Contains(t, out, "{LC;0000,0180,0600,0180,0,2|}")
	assert.Contains(t, out, "{XR;0010,0010,0590,0390,B|}")
	assert.Contains(t, out, "{XS;I,0003,0002C3000|}")
}

func TestGenerateOmitsMissingContent(t *testing.T) {
	tmpl := helloTemplate()
	tmpl.Elements[0].(*models.Text).Content = nil
	out := generate(t, tmpl)

	assert.Contains(t, out, "{PC000;")
	assert.NotContains(t, out, "{RC000")

	tmpl.Elements[0].(*models.Text).Content = models.StringPtr("")
	assert.Contains(t, generate(t, tmpl), "{RC000;|}")
}

func TestGenerateClamping(t *testing.T) {
	tmpl := models.NewLabelTemplate("clamp", 50, 30, models.ProtocolTPCL)
	tmpl.Elements = []models.Element{
		&models.QRCode{Base: models.Base{ID: "qr", Rotation: 7}, Content: "x", Size: 25, ErrorCorrection: "z"},
		&models.Text{Base: models.Base{ID: "t"}, Content: models.StringPtr("x"), Width: 150, Height: 0.55},
	}
	out := generate(t, tmpl)

	assert.Contains(t, out, "{XB00;0000,0000,T,M,20,A,3|}")
	assert.Contains(t, out, "{PC001;0000,0000,99,06,A,00,B|}")
}

func TestMagnification(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{1, 10},
		{0.5, 5},
		{9.94, 99},
		{10, 10},
		{25, 25},
		{150, 99},
		{-1, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, magnification(tc.in), "scale %v", tc.in)
	}
}

func TestFontCodeResolution(t *testing.T) {
	c := NewCodec()
	assert.Equal(t, "H", c.fontCode(&models.Text{FontFamily: "Helvetica", FontSize: 10}))
	assert.Equal(t, "Q", c.fontCode(&models.Text{Font: "Q"}))
	assert.Equal(t, defaultFontCode, c.fontCode(&models.Text{FontFamily: "Wingdings", FontSize: 10}))
	assert.Equal(t, defaultFontCode, c.fontCode(&models.Text{Font: "ZZ"}))
}

func TestGenerateReusesFieldNumbers(t *testing.T) {
	tmpl := models.NewLabelTemplate("ids", 50, 30, models.ProtocolTPCL)
	tmpl.Elements = []models.Element{
		&models.Text{Base: models.Base{ID: "a"}, Content: models.StringPtr("a")},
		&models.Text{Base: models.Base{ID: "PC000"}, Content: models.StringPtr("b")},
	}
	out := generate(t, tmpl)

	// "a" would take 000 by index but that number is reserved
	assert.Contains(t, out, "{RC000;b|}")
	assert.Contains(t, out, "{RC001;a|}")
}

func TestGenerateRejectsInvalidTemplate(t *testing.T) {
	_, err := NewCodec().Generate(nil)
	assert.ErrorIs(t, err, models.ErrInvalidTemplate)

	tmpl := helloTemplate()
	tmpl.Elements = append(tmpl.Elements, &models.Line{Base: models.Base{ID: "greeting"}})
	_, err = NewCodec().Generate(tmpl)
	assert.ErrorIs(t, err, models.ErrInvalidTemplate)
}

func TestGenerateFieldNumberRange(t *testing.T) {
	tmpl := models.NewLabelTemplate("many", 100, 150, models.ProtocolTPCL)
	for i := 0; i < maxTextFields; i++ {
		tmpl.Elements = append(tmpl.Elements, &models.Line{Base: models.Base{ID: fmt.Sprintf("l%d", i)}, X2: 10, Thickness: 1})
	}
	tmpl.Elements = append(tmpl.Elements, &models.Text{Base: models.Base{ID: "late"}, Content: models.StringPtr("late")})

	// index 1000 wraps back into the three digit range
	assert.Contains(t, generate(t, tmpl), "{RC000;late|}")

	codes := models.NewLabelTemplate("codes", 100, 150, models.ProtocolTPCL)
	for i := 0; i < maxBarcodeFields; i++ {
		codes.Elements = append(codes.Elements, &models.QRCode{Base: models.Base{ID: fmt.Sprintf("q%d", i)}, Content: "x", Size: 3})
	}
	out := generate(t, codes)
	assert.Contains(t, out, "{RB99;x|}")
	assert.NotContains(t, out, "{RB100;")

	codes.Elements = append(codes.Elements, &models.QRCode{Base: models.Base{ID: "one-too-many"}, Content: "x", Size: 3})
	_, err := NewCodec().Generate(codes)
	assert.ErrorIs(t, err, models.ErrInvalidTemplate)
	assert.Contains(t, err.Error(), "more than 100 barcode fields")
}

func TestParseConcreteExample(t *testing.T) {
	tmpl, errs := NewCodec().Parse(generate(t, helloTemplate()), "imported")
	assert.Empty(t, errs)

	assert.Equal(t, "imported", tmpl.Name)
	assert.Equal(t, 100.0, tmpl.Width)
	assert.Equal(t, 150.0, tmpl.Height)
	assert.Equal(t, models.ProtocolTPCL, tmpl.Protocol)
	require.NotNil(t, tmpl.Settings)
	assert.Equal(t, 1, tmpl.Settings.Quantity)
	require.NotNil(t, tmpl.Settings.Speed)

	require.Len(t, tmpl.Elements, 1)
	text, ok := tmpl.Elements[0].(*models.Text)
	require.True(t, ok)
	assert.Equal(t, "PC000", text.ID)
	assert.Equal(t, "Hello", text.Value())
	assert.InDelta(t, 25.3, text.X, 1e-9)
	assert.InDelta(t, 35.5, text.Y, 1e-9)
	assert.Equal(t, "H", text.Font)
	assert.Equal(t, "Helvetica", text.FontFamily)
	assert.Equal(t, 10.0, text.FontSize)
}

func TestRoundTrip(t *testing.T) {
	original := mixedTemplate()
	parsed, errs := NewCodec().Parse(generate(t, original), "mixed")
	assert.Empty(t, errs)
	assert.Equal(t, 60.0, parsed.Width)
	assert.Equal(t, 40.0, parsed.Height)
	assert.Equal(t, 3, parsed.Settings.Quantity)

	byKind := make(map[models.ElementKind]models.Element)
	for _, el := range parsed.Elements {
		byKind[el.Kind()] = el
	}
	require.Len(t, byKind, 5)

	text := byKind[models.KindText].(*models.Text)
	want := original.Elements[1].(*models.Text)
	assert.Equal(t, want.Value(), text.Value())
	assertNear(t, want.X, text.X)
	assertNear(t, want.Y, text.Y)
	assert.Equal(t, want.Rotation, text.Rotation)
	assertNear(t, want.Width, text.Width)
	assertNear(t, want.Height, text.Height)
	assert.Equal(t, "J", text.Font)

	bc := byKind[models.KindBarcode].(*models.Barcode)
	wantBC := original.Elements[0].(*models.Barcode)
	assert.Equal(t, wantBC.Content, bc.Content)
	assert.Equal(t, wantBC.Symbology, bc.Symbology)
	assert.Equal(t, wantBC.Rotation, bc.Rotation)
	assertNear(t, wantBC.Height, bc.Height)
	assert.Equal(t, wantBC.Width, bc.Width)
	require.NotNil(t, bc.ShowText)
	assert.True(t, *bc.ShowText)

	qr := byKind[models.KindQRCode].(*models.QRCode)
	assert.Equal(t, "https://example.com/w?id=1", qr.Content)
	assert.Equal(t, 4, qr.Size)
	assert.Equal(t, models.QRErrorHigh, qr.ErrorCorrection)

	line := byKind[models.KindLine].(*models.Line)
	assertNear(t, 60, line.X2)
	assertNear(t, 18, line.Y2)
	assert.Equal(t, 2.0, line.Thickness)

	rect := byKind[models.KindRectangle].(*models.Rectangle)
	assertNear(t, 1, rect.X)
	assertNear(t, 58, rect.Width)
	assertNear(t, 38, rect.Height)
}

func TestIdempotentReencode(t *testing.T) {
	for _, tmpl := range []*models.LabelTemplate{helloTemplate(), mixedTemplate()} {
		first := generate(t, tmpl)
		parsed, _ := NewCodec().Parse(first, tmpl.Name)
		assert.Equal(t, first, generate(t, parsed), tmpl.Name)
	}
}

func TestParseSizeForms(t *testing.T) {
	bare, errs := NewCodec().Parse("{D0500,0800,0470|}", "bare")
	assert.Empty(t, errs)
	assert.Equal(t, 50.0, bare.Height)
	assert.Equal(t, 80.0, bare.Width)

	qualified, errs := NewCodec().Parse("{D;0620,0410}", "qualified")
	assert.Empty(t, errs)
	assert.Equal(t, 62.0, qualified.Height)
	assert.Equal(t, 41.0, qualified.Width)

	missing, errs := NewCodec().Parse("{C|}", "missing")
	assert.Len(t, errs, 1)
	assert.Equal(t, DefaultWidthMM, missing.Width)
}

func TestParseIsLenient(t *testing.T) {
	payload := strings.Join([]string{
		"{C|}",
		"{D0400,0600,0370|}",
		"{RC007;orphan|}",
		"{PC000;0010,0020,10,10,H,00,B|}",
		"{PC001;bad|}",
		"{RB03;orphan|}",
		"{ZZ;1,2|}",
		"{RC000;kept|}",
		"{XB00;0010,0010,A,3|}",
		"{PC002;0010",
	}, "\r\n")

	tmpl, errs := NewCodec().Parse(payload, "messy")
	require.Len(t, tmpl.Elements, 1)
	assert.Equal(t, "kept", tmpl.Elements[0].(*models.Text).Value())

	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Reason)
	}
	assert.Equal(t, []string{
		"text data without definition",
		"text definition needs at least 5 parameters",
		"barcode data without definition",
		"unsupported command",
		"barcode definition needs at least 7 parameters",
		"unterminated command",
	}, reasons)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, 10, errs[len(errs)-1].Line)
}

func TestParseReportsTextOutsideCommands(t *testing.T) {
	payload := "{D0400,0600,0370|}\r\n{PC000;0010,0020,10,10,H,00,B|}\r\n{RC000;a}b|}\r\n{XS;I,0001,0002C3000|}\r\n  \r\ntrailer"
	tmpl, errs := NewCodec().Parse(payload, "stray")

	require.Len(t, tmpl.Elements, 1)
	assert.Equal(t, "a", tmpl.Elements[0].(*models.Text).Value())

	require.Len(t, errs, 2)
	assert.Equal(t, "text outside command", errs[0].Reason)
	assert.Equal(t, "b|}", errs[0].Content)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, "trailer", errs[1].Content)
	assert.Equal(t, 6, errs[1].Line)
}

func TestParseUnknownFontFallsBackToFirstEntry(t *testing.T) {
	tmpl, _ := NewCodec().Parse("{D0400,0600,0370|}{PC000;0010,0020,10,10,?,00,B|}", "font")
	text := tmpl.Elements[0].(*models.Text)
	assert.Equal(t, "A", text.Font)
	assert.Equal(t, "Times Roman", text.FontFamily)
	assert.False(t, text.HasContent())
}

func TestParseBarcodeNamespace(t *testing.T) {
	payload := "{D0400,0600,0370|}" +
		"{XB00;0010,0010,T,L,05,A,1|}" +
		"{XB01;0010,0100,5,3,02,0,0080|}" +
		"{XB02;0010,0200,T,3,02,0,0080|}" +
		"{RB00;qr|}{RB01;4901234567894|}{RB02;which|}"

	tmpl, errs := NewCodec().Parse(payload, "xb")
	require.Len(t, tmpl.Elements, 3)

	qr, ok := tmpl.Elements[0].(*models.QRCode)
	require.True(t, ok)
	assert.Equal(t, "qr", qr.Content)
	assert.Equal(t, 5, qr.Size)
	assert.Equal(t, models.QRErrorLow, qr.ErrorCorrection)
	assert.Equal(t, 1, qr.Rotation)

	ean, ok := tmpl.Elements[1].(*models.Barcode)
	require.True(t, ok)
	assert.Equal(t, models.SymbologyEAN13, ean.Symbology)
	assert.Nil(t, ean.ShowText)

	// seven parameters, QR marker, but a numeric check-digit slot: both
	// readings are structurally valid, so the decode is flagged
	ambiguous, ok := tmpl.Elements[2].(*models.QRCode)
	require.True(t, ok)
	assert.Equal(t, "which", ambiguous.Content)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Reason, "ambiguous")
}

func TestParseLineBox(t *testing.T) {
	tmpl, errs := NewCodec().Parse("{D0400,0600,0370|}{LC;0010,0020,0110,0220,1,3|}", "box")
	assert.Empty(t, errs)
	rect, ok := tmpl.Elements[0].(*models.Rectangle)
	require.True(t, ok)
	assertNear(t, 1, rect.X)
	assertNear(t, 10, rect.Width)
	assertNear(t, 20, rect.Height)
	assert.Equal(t, 3.0, rect.Thickness)
}

func assertNear(t *testing.T, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 0.1+1e-9 {
		t.Errorf("expected %v within 0.1, got %v", want, got)
	}
}
