package zpl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/label-designer/backend/internal/models"
)

// reserved replaces the command prefixes that cannot appear in field data.
var reserved = strings.NewReplacer("^", " ", "~", " ")

// Generate renders the template as a newline-separated ZPL payload.
func (c *Codec) Generate(t *models.LabelTemplate) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	settings := t.SettingsFor(models.ProtocolZPL)
	if t.Settings == nil || t.Settings.Resolution == nil || *t.Settings.Resolution <= 0 {
		settings.Resolution = models.IntPtr(c.dpi)
	}
	dpmm := dotsPerMM(*settings.Resolution)

	out := []string{
		"^XA",
		"^CI28",
		fmt.Sprintf("^PW%d", round(t.Width*dpmm)),
		fmt.Sprintf("^LL%d", round(t.Height*dpmm)),
		fmt.Sprintf("~SD%02d", models.ClampInt(*settings.Darkness, 0, 30)),
		fmt.Sprintf("^PR%d", models.ClampInt(*settings.Speed, 1, 14)),
	}

	g := &generator{codec: c}
	for _, el := range t.Elements {
		el.Accept(g)
	}
	out = append(out, g.lines...)
	out = append(out,
		fmt.Sprintf("^PQ%d", models.ClampInt(settings.Quantity, 1, 99999999)),
		"^XZ",
	)
	return strings.Join(out, "\n") + "\n", nil
}

type generator struct {
	codec *Codec
	lines []string
}

func (g *generator) VisitText(el *models.Text) {
	h, w := round(el.Height), round(el.Width)
	// ^FO places the top of the field. Near the top edge that would go
	// negative, so the baseline origin ^FT is used instead.
	origin, y := "FO", round(el.Y)-ascent(h)
	if y < 0 {
		origin, y = "FT", round(el.Y)
	}
	g.lines = append(g.lines, fmt.Sprintf("^%s%d,%d^A%s%c,%d,%d^FD%s^FS",
		origin, round(el.X), y, g.codec.fontCode(el), orientation(el.Rotation), h, w, reserved.Replace(el.Value())))
}

func (g *generator) VisitBarcode(el *models.Barcode) {
	ratio := 3.0
	if el.Ratio != nil {
		ratio = math.Min(math.Max(*el.Ratio, 2), 3)
	}
	h := round(el.Height)
	g.lines = append(g.lines, fmt.Sprintf("^BY%d,%s,%d",
		models.ClampInt(round(el.Width), 1, 10), strconv.FormatFloat(ratio, 'f', 1, 64), h))

	code := g.codec.barcodes.CodeFor(el.Symbology, defaultBarcode)
	o := orientation(el.Rotation)
	interp := "Y"
	if el.ShowText != nil && !*el.ShowText {
		interp = "N"
	}
	var params string
	switch code {
	case "B3":
		params = fmt.Sprintf("%c,N,%d,%s,N", o, h, interp)
	case "BU", "B9":
		params = fmt.Sprintf("%c,%d,%s,N,Y", o, h, interp)
	case "BE", "B8":
		params = fmt.Sprintf("%c,%d,%s,N", o, h, interp)
	default:
		params = fmt.Sprintf("%c,%d,%s,N,N", o, h, interp)
	}
	g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^%s%s^FD%s^FS",
		round(el.X), round(el.Y), code, params, reserved.Replace(el.Content)))
}

func (g *generator) VisitQRCode(el *models.QRCode) {
	g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^%sN,2,%d^FD%sA,%s^FS",
		round(el.X), round(el.Y), qrCommand, models.ClampInt(el.Size, 1, 20),
		errorCorrection(el.ErrorCorrection), reserved.Replace(el.Content)))
}

// VisitLine draws axis-aligned lines as boxes one thickness deep and
// everything else as a diagonal.
func (g *generator) VisitLine(el *models.Line) {
	x1, y1, x2, y2 := round(el.X), round(el.Y), round(el.X2), round(el.Y2)
	t := thickness(el.Thickness)
	left, top := min(x1, x2), min(y1, y2)
	w, h := abs(x2-x1), abs(y2-y1)

	switch {
	case y1 == y2:
		g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^GB%d,%d,%d^FS", left, top, w, t, t))
	case x1 == x2:
		g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^GB%d,%d,%d^FS", left, top, t, h, t))
	default:
		lean := "R"
		if (x2 > x1) == (y2 > y1) {
			lean = "L"
		}
		g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^GD%d,%d,%d,B,%s^FS", left, top, w, h, t, lean))
	}
}

func (g *generator) VisitRectangle(el *models.Rectangle) {
	g.lines = append(g.lines, fmt.Sprintf("^FO%d,%d^GB%d,%d,%d^FS",
		round(el.X), round(el.Y), round(el.Width), round(el.Height), thickness(el.Thickness)))
}

// fontCode prefers an explicit catalog code, then a typography match.
func (c *Codec) fontCode(el *models.Text) string {
	if _, ok := c.fonts.Find(el.Font); ok {
		return el.Font
	}
	weight, style := el.FontWeight, el.FontStyle
	if weight == "" {
		weight = "normal"
	}
	if style == "" {
		style = "normal"
	}
	return c.fonts.CodeFor(el.FontFamily, el.FontSize, weight, style, defaultFontCode)
}

func thickness(t float64) int {
	if v := round(t); v > 0 {
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
