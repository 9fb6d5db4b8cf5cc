package tpcl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/label-designer/backend/internal/models"
)

var (
	textIDRegex    = regexp.MustCompile(`^PC(\d{3})$`)
	barcodeIDRegex = regexp.MustCompile(`^XB(\d{2})$`)
)

// Generate renders the template as a CRLF-separated TPCL payload.
// Field definitions always precede field data, and graphics come last,
// whatever the element order.
func (c *Codec) Generate(t *models.LabelTemplate) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	settings := t.SettingsFor(models.ProtocolTPCL)

	out := []string{
		"{C|}",
		fmt.Sprintf("{D%04d,%04d,%04d|}",
			clampField(t.Height*10), clampField(t.Width*10), clampField((t.Height-gapMM)*10)),
		"{AX;+000,+000,+00|}",
		"{AY;+00,0|}",
	}

	g := &generator{
		codec:       c,
		textNums:    newNumberer(t.Elements, textIDRegex, maxTextFields, models.KindText),
		barcodeNums: newNumberer(t.Elements, barcodeIDRegex, maxBarcodeFields, models.KindBarcode, models.KindQRCode),
	}
	for i, el := range t.Elements {
		g.index = i
		el.Accept(g)
	}
	if g.err != nil {
		return "", g.err
	}

	out = append(out, g.textDefs...)
	out = append(out, g.barcodeDefs...)
	out = append(out, g.data...)
	out = append(out, g.graphics...)
	out = append(out, fmt.Sprintf("{XS;I,%04d,0002C3000|}", models.ClampInt(settings.Quantity, 1, 9999)))

	return strings.Join(out, "\r\n") + "\r\n", nil
}

// generator sorts element commands into the four ordered buckets.
type generator struct {
	codec       *Codec
	index       int
	err         error
	barcodeSeq  int
	textNums    *numberer
	barcodeNums *numberer

	textDefs    []string
	barcodeDefs []string
	data        []string
	graphics    []string
}

func (g *generator) VisitText(el *models.Text) {
	n, ok := g.textNums.next(el.ID, g.index)
	if !ok {
		g.overflow("text", maxTextFields)
		return
	}
	rot := models.NormalizeRotation(el.Rotation)
	g.textDefs = append(g.textDefs, fmt.Sprintf("{PC%03d;%04d,%04d,%02d,%02d,%s,%d%d,B|}",
		n, tenths(el.X), tenths(el.Y),
		magnification(el.Width), magnification(el.Height),
		g.codec.fontCode(el), rot, rot))
	if el.HasContent() {
		g.data = append(g.data, fmt.Sprintf("{RC%03d;%s|}", n, *el.Content))
	}
}

func (g *generator) VisitBarcode(el *models.Barcode) {
	n, ok := g.barcodeNums.next(el.ID, g.barcodeSeq)
	g.barcodeSeq++
	if !ok {
		g.overflow("barcode", maxBarcodeFields)
		return
	}
	showText := 0
	if el.ShowText != nil && *el.ShowText {
		showText = 1
	}
	g.barcodeDefs = append(g.barcodeDefs, fmt.Sprintf("{XB%02d;%04d,%04d,%s,3,%02d,%d,%04d,+0000000000,%d,00,0|}",
		n, tenths(el.X), tenths(el.Y),
		g.codec.barcodes.CodeFor(el.Symbology, defaultBarcodeCode),
		models.ClampInt(int(math.Round(el.Width)), 1, 99),
		models.NormalizeRotation(el.Rotation),
		tenths(el.Height), showText))
	g.data = append(g.data, fmt.Sprintf("{RB%02d;%s|}", n, el.Content))
}

func (g *generator) VisitQRCode(el *models.QRCode) {
	n, ok := g.barcodeNums.next(el.ID, g.barcodeSeq)
	g.barcodeSeq++
	if !ok {
		g.overflow("barcode", maxBarcodeFields)
		return
	}
	g.barcodeDefs = append(g.barcodeDefs, fmt.Sprintf("{XB%02d;%04d,%04d,%s,%s,%02d,A,%d|}",
		n, tenths(el.X), tenths(el.Y), qrMarker,
		errorCorrection(el.ErrorCorrection),
		models.ClampInt(el.Size, 1, 20),
		models.NormalizeRotation(el.Rotation)))
	g.data = append(g.data, fmt.Sprintf("{RB%02d;%s|}", n, el.Content))
}

func (g *generator) overflow(kind string, limit int) {
	if g.err == nil {
		g.err = fmt.Errorf("%w: more than %d %s fields", models.ErrInvalidTemplate, limit, kind)
	}
}

func (g *generator) VisitLine(el *models.Line) {
	g.graphics = append(g.graphics, fmt.Sprintf("{LC;%04d,%04d,%04d,%04d,0,%d|}",
		tenths(el.X), tenths(el.Y), tenths(el.X2), tenths(el.Y2), thickness(el.Thickness)))
}

func (g *generator) VisitRectangle(el *models.Rectangle) {
	g.graphics = append(g.graphics, fmt.Sprintf("{XR;%04d,%04d,%04d,%04d,B|}",
		tenths(el.X), tenths(el.Y), tenths(el.X+el.Width), tenths(el.Y+el.Height)))
}

// fontCode resolves typography to a code. A bare catalog code is honored
// when no typography matches.
func (c *Codec) fontCode(el *models.Text) string {
	code := c.fonts.CodeFor(el.FontFamily, el.FontSize, orNormal(el.FontWeight), orNormal(el.FontStyle), "")
	if code != "" {
		return code
	}
	if _, ok := c.fonts.Find(el.Font); ok {
		return el.Font
	}
	return defaultFontCode
}

func orNormal(s string) string {
	if s == "" {
		return "normal"
	}
	return s
}

// Field numbers are fixed width: PC000-PC999 and XB00-XB99.
const (
	maxTextFields    = 1000
	maxBarcodeFields = 100
)

// numberer hands out field numbers. Ids already shaped like a field tag keep
// their number; everything else takes its fallback number, bumped past any
// number already in use and wrapping below limit.
type numberer struct {
	pattern *regexp.Regexp
	limit   int
	used    map[int]bool
}

func newNumberer(elements []models.Element, pattern *regexp.Regexp, limit int, kinds ...models.ElementKind) *numberer {
	n := &numberer{pattern: pattern, limit: limit, used: make(map[int]bool)}
	for _, el := range elements {
		if !hasKind(el.Kind(), kinds) {
			continue
		}
		if num, ok := n.reserved(el.ElementID()); ok {
			n.used[num] = true
		}
	}
	return n
}

func (n *numberer) reserved(id string) (int, bool) {
	m := n.pattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return num, true
}

// next returns false once every number below the limit is taken.
func (n *numberer) next(id string, fallback int) (int, bool) {
	if num, ok := n.reserved(id); ok {
		return num, true
	}
	for i := 0; i < n.limit; i++ {
		num := (fallback + i) % n.limit
		if !n.used[num] {
			n.used[num] = true
			return num, true
		}
	}
	return 0, false
}

func hasKind(k models.ElementKind, kinds []models.ElementKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// tenths converts millimeters to a four digit tenths-of-mm field.
func tenths(mm float64) int {
	return clampField(mm * 10)
}

func clampField(v float64) int {
	return models.ClampInt(int(math.Round(v)), 0, 9999)
}

// magnification encodes a scale factor as a two digit field. Values of 10
// or more are taken as already scaled.
func magnification(scale float64) int {
	if scale >= 10 {
		return models.ClampInt(int(math.Round(scale)), 0, 99)
	}
	return models.ClampInt(int(math.Round(scale*10)), 0, 99)
}

func thickness(t float64) int {
	if v := int(math.Round(t)); v > 0 {
		return v
	}
	return 1
}

func errorCorrection(level string) string {
	switch level = strings.ToUpper(level); level {
	case models.QRErrorLow, models.QRErrorMedium, models.QRErrorQuartile, models.QRErrorHigh:
		return level
	default:
		return models.QRErrorMedium
	}
}
