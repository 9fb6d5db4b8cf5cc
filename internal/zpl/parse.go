package zpl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/label-designer/backend/internal/models"
)

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldText
	fieldBarcode
	fieldQRCode
	fieldBox
	fieldDiagonal
)

// token is one ^XX or ~XX command with its parameter text.
type token struct {
	line   int
	offset int
	raw    string
	op     string
	params string
}

// pendingField collects origin, content type and data until ^FS.
type pendingField struct {
	kind     fieldKind
	x, y     int
	baseline bool

	font        string
	orientation string
	height      int
	width       int

	symbology string
	showText  bool

	qrSize int

	thickness int
	lean      string

	data *string
}

// barDefaults is the ^BY state, kept across fields until overwritten.
type barDefaults struct {
	width  int
	ratio  float64
	height int
}

// parser carries the per-call state of a decode.
type parser struct {
	codec  *Codec
	errors []*models.ParseError

	elements    []models.Element
	textHeights []int
	maxX, maxY  int

	hasOrigin bool
	originX   int
	originY   int
	baseline  bool
	homeX     int
	homeY     int
	pending   *pendingField
	bar       barDefaults

	defaultFont   string
	defaultHeight int
	defaultWidth  int

	pageWidth  int
	pageLength int
	quantity   int
	speed      *int
	darkness   *int
}

// Parse decodes a ZPL payload. It never fails: commands it cannot place are
// skipped and reported as ParseErrors. The resolution is inferred and
// recorded in the returned settings.
func (c *Codec) Parse(text string, name string) (*models.LabelTemplate, []*models.ParseError) {
	p := &parser{
		codec:         c,
		errors:        make([]*models.ParseError, 0),
		elements:      make([]models.Element, 0),
		bar:           barDefaults{width: 2, ratio: 3, height: 10},
		defaultFont:   "A",
		defaultHeight: 9,
		defaultWidth:  5,
	}

	for _, tok := range tokenize(text) {
		if tok.op == "XZ" {
			if strings.Contains(strings.ToUpper(text[tok.offset+len(tok.raw):]), "^XA") {
				p.fail(tok.line, tok.raw, "only the first label is decoded")
			}
			break
		}
		p.apply(tok)
	}
	if p.pending != nil {
		p.fail(0, "", "unterminated field dropped")
	}

	widthDots, heightDots := p.pageWidth, p.pageLength
	if widthDots <= 0 {
		widthDots = p.maxX
	}
	if heightDots <= 0 {
		heightDots = p.maxY
	}
	dpi := InferDPI(c.candidates(), widthDots, heightDots, p.textHeights)

	tmpl := &models.LabelTemplate{
		Name:     name,
		Width:    DefaultWidthMM,
		Height:   DefaultHeightMM,
		Elements: p.elements,
		Protocol: models.ProtocolZPL,
	}
	if widthDots > 0 {
		tmpl.Width = toMM(widthDots, dpi)
	}
	if heightDots > 0 {
		tmpl.Height = toMM(heightDots, dpi)
	}
	settings := models.PrintSettings{
		Quantity:   p.quantity,
		Speed:      p.speed,
		Darkness:   p.darkness,
		Resolution: models.IntPtr(dpi),
	}.WithDefaults(models.ProtocolZPL)
	tmpl.Settings = &settings

	return tmpl, p.errors
}

// tokenize splits the payload at every ^ or ~ command prefix.
func tokenize(text string) []token {
	tokens := make([]token, 0)
	line := 1
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		raw := text[start:end]
		body := raw[1:]
		if len(body) == 0 {
			return
		}
		tok := token{line: line, offset: start, raw: raw}
		switch {
		case raw[0] == '^' && (body[0] == 'A' || body[0] == 'a'):
			// ^Afo,h,w: the font name follows the command letter
			tok.op = "A"
			tok.params = body[1:]
		case len(body) >= 2:
			tok.op = strings.ToUpper(body[:2])
			tok.params = body[2:]
		default:
			tok.op = strings.ToUpper(body)
		}
		if tok.op == "FD" {
			tok.params = strings.TrimRight(tok.params, "\r\n")
		} else {
			tok.params = strings.TrimSpace(tok.params)
		}
		tokens = append(tokens, tok)
		line += strings.Count(raw, "\n")
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '^' || text[i] == '~' {
			flush(i)
			start = i
		} else if start < 0 && text[i] == '\n' {
			line++
		}
	}
	flush(len(text))
	return tokens
}

func (p *parser) apply(tok token) {
	switch tok.op {
	case "XA", "CI", "FX", "MD", "MM", "MN", "MT", "PO", "JM":
		// framing, charset, comments and media setup carry nothing for the model
	case "PW":
		p.pageWidth = atoi(firstParam(tok.params))
	case "LL":
		p.pageLength = atoi(firstParam(tok.params))
	case "LH":
		params := splitParams(tok.params)
		p.homeX, p.homeY = intAt(params, 0, 0), intAt(params, 1, 0)
	case "PQ":
		p.quantity = atoi(firstParam(tok.params))
	case "PR":
		if v, err := strconv.Atoi(firstParam(tok.params)); err == nil {
			p.speed = models.IntPtr(v)
		}
	case "SD":
		if v, err := strconv.Atoi(firstParam(tok.params)); err == nil {
			p.darkness = models.IntPtr(v)
		}
	case "CF":
		params := splitParams(tok.params)
		if len(params) > 0 && params[0] != "" {
			p.defaultFont = params[0]
		}
		p.defaultHeight = intAt(params, 1, p.defaultHeight)
		p.defaultWidth = intAt(params, 2, p.defaultHeight)
	case "BY":
		params := splitParams(tok.params)
		p.bar.width = intAt(params, 0, p.bar.width)
		if len(params) > 1 {
			if r, err := strconv.ParseFloat(params[1], 64); err == nil {
				p.bar.ratio = r
			}
		}
		p.bar.height = intAt(params, 2, p.bar.height)
	case "FO", "FT":
		params := splitParams(tok.params)
		p.hasOrigin = true
		p.originX = intAt(params, 0, 0) + p.homeX
		p.originY = intAt(params, 1, 0) + p.homeY
		p.baseline = tok.op == "FT"
	case "A":
		p.applyFont(tok)
	case "BC", "B3", "BE", "B8", "BU", "B9":
		p.applyBarcode(tok)
	case "BQ":
		p.applyQRCode(tok)
	case "GB":
		p.applyBox(tok)
	case "GD":
		p.applyDiagonal(tok)
	case "FD":
		p.applyData(tok)
	case "FS":
		p.finishField(tok)
	default:
		p.fail(tok.line, tok.raw, "unsupported command")
	}
}

// begin starts a pending field at the current origin. Content-type commands
// without an origin are dropped.
func (p *parser) begin(tok token, kind fieldKind) *pendingField {
	if !p.hasOrigin {
		p.fail(tok.line, tok.raw, "field command without origin")
		return nil
	}
	p.pending = &pendingField{kind: kind, x: p.originX, y: p.originY, baseline: p.baseline}
	return p.pending
}

func (p *parser) applyFont(tok token) {
	f := p.begin(tok, fieldText)
	if f == nil {
		return
	}
	params := splitParams(tok.params)
	name := ""
	if len(params) > 0 {
		name = params[0]
	}
	f.font = p.defaultFont
	if name != "" {
		f.font = name[:1]
		f.orientation = name[1:]
	}
	f.height = intAt(params, 1, p.defaultHeight)
	f.width = intAt(params, 2, f.height)
}

func (p *parser) applyBarcode(tok token) {
	f := p.begin(tok, fieldBarcode)
	if f == nil {
		return
	}
	params := splitParams(tok.params)
	f.symbology = tok.op
	f.orientation = stringAt(params, 0)
	heightAt, interpAt := 1, 2
	if tok.op == "B3" {
		heightAt, interpAt = 2, 3
	}
	f.height = intAt(params, heightAt, p.bar.height)
	f.showText = stringAt(params, interpAt) != "N"
}

func (p *parser) applyQRCode(tok token) {
	f := p.begin(tok, fieldQRCode)
	if f == nil {
		return
	}
	f.qrSize = intAt(splitParams(tok.params), 2, 2)
}

func (p *parser) applyBox(tok token) {
	f := p.begin(tok, fieldBox)
	if f == nil {
		return
	}
	params := splitParams(tok.params)
	f.thickness = intAt(params, 2, 1)
	f.width = intAt(params, 0, f.thickness)
	f.height = intAt(params, 1, f.thickness)
}

func (p *parser) applyDiagonal(tok token) {
	f := p.begin(tok, fieldDiagonal)
	if f == nil {
		return
	}
	params := splitParams(tok.params)
	f.thickness = intAt(params, 2, 1)
	f.width = intAt(params, 0, f.thickness)
	f.height = intAt(params, 1, f.thickness)
	f.lean = strings.ToUpper(stringAt(params, 4))
}

// applyData attaches ^FD content. Data after an origin but before any
// content type prints in the ^CF default font.
func (p *parser) applyData(tok token) {
	if p.pending == nil {
		if !p.hasOrigin {
			p.fail(tok.line, tok.raw, "field data without origin")
			return
		}
		f := p.begin(tok, fieldText)
		f.font = p.defaultFont
		f.height = p.defaultHeight
		f.width = p.defaultWidth
	}
	if p.pending.kind == fieldBox || p.pending.kind == fieldDiagonal {
		p.fail(tok.line, tok.raw, "field data on a graphic field ignored")
		return
	}
	data := tok.params
	p.pending.data = &data
}

func (p *parser) finishField(tok token) {
	f := p.pending
	p.pending = nil
	p.hasOrigin = false
	p.baseline = false
	if f == nil {
		p.fail(tok.line, tok.raw, "field separator without field")
		return
	}

	switch f.kind {
	case fieldText:
		p.addText(f)
	case fieldBarcode:
		p.addBarcode(f)
	case fieldQRCode:
		p.addQRCode(f)
	case fieldBox:
		p.addBox(f)
	case fieldDiagonal:
		p.addDiagonal(f)
	}
}

func (p *parser) addText(f *pendingField) {
	font := p.codec.fonts.Lookup(f.font)
	y := f.y
	if !f.baseline {
		y += ascent(f.height)
	}
	el := &models.Text{
		Base:       models.Base{ID: newID("text"), X: float64(f.x), Y: float64(y), Rotation: rotationOf(f.orientation)},
		Content:    f.data,
		Font:       font.Code,
		FontFamily: font.Family,
		FontSize:   font.Size,
		FontWeight: font.Weight,
		FontStyle:  font.Style,
		Width:      float64(f.width),
		Height:     float64(f.height),
	}
	p.elements = append(p.elements, el)
	p.textHeights = append(p.textHeights, f.height)

	top := y - ascent(f.height)
	p.extend(f.x+f.width*max(1, utf8.RuneCountInString(el.Value())), top+f.height)
}

func (p *parser) addBarcode(f *pendingField) {
	sym := models.SymbologyCode128
	if entry, ok := p.codec.barcodes.Lookup(f.symbology); ok && entry.Symbology != "" {
		sym = entry.Symbology
	}
	el := &models.Barcode{
		Base:      models.Base{ID: newID("barcode"), X: float64(f.x), Y: float64(f.y), Rotation: rotationOf(f.orientation)},
		Content:   deref(f.data),
		Symbology: sym,
		Height:    float64(f.height),
		Width:     float64(p.bar.width),
		Ratio:     models.Float64Ptr(p.bar.ratio),
		ShowText:  models.BoolPtr(f.showText),
	}
	p.elements = append(p.elements, el)

	// rough Code 128 width: 11 modules per character plus start, stop and quiet zones
	modules := 11*utf8.RuneCountInString(el.Content) + 35
	p.extend(f.x+p.bar.width*modules, f.y+f.height)
}

func (p *parser) addQRCode(f *pendingField) {
	data := deref(f.data)
	ecc := models.QRErrorMedium
	// ^FD for a QR code is <ecc><input mode>,<data>
	if len(data) >= 3 && data[2] == ',' {
		ecc = errorCorrection(data[:1])
		data = data[3:]
	}
	el := &models.QRCode{
		Base:            models.Base{ID: newID("qrcode"), X: float64(f.x), Y: float64(f.y)},
		Content:         data,
		Size:            models.ClampInt(f.qrSize, 1, 20),
		ErrorCorrection: ecc,
	}
	p.elements = append(p.elements, el)

	// version 2 symbol plus quiet zone
	side := el.Size * 25
	p.extend(f.x+side, f.y+side)
}

// addBox turns a box into a rectangle, or into a line when the box is no
// wider or taller than its border.
func (p *parser) addBox(f *pendingField) {
	x, y, w, h, t := f.x, f.y, f.width, f.height, f.thickness
	p.extend(x+w, y+h)

	if w <= t || h <= t {
		line := &models.Line{Base: models.Base{ID: newID("line"), X: float64(x), Y: float64(y)}, Thickness: float64(t)}
		if horizontalBox(w, h, t) {
			line.X2, line.Y2 = float64(x+w), float64(y)
		} else {
			line.X2, line.Y2 = float64(x), float64(y+h)
		}
		p.elements = append(p.elements, line)
		return
	}
	p.elements = append(p.elements, &models.Rectangle{
		Base:      models.Base{ID: newID("rect"), X: float64(x), Y: float64(y)},
		Width:     float64(w),
		Height:    float64(h),
		Thickness: float64(t),
	})
}

// horizontalBox reports whether a degenerate box is a horizontal line.
// Lines are drawn one thickness deep, so the side equal to the thickness
// is the thin one. A square box reads as horizontal.
func horizontalBox(w, h, t int) bool {
	switch {
	case w > t:
		return true
	case h > t:
		return false
	case h == t && w != t:
		return true
	case w == t && h != t:
		return false
	default:
		return w >= h
	}
}

func (p *parser) addDiagonal(f *pendingField) {
	x, y, w, h := f.x, f.y, f.width, f.height
	line := &models.Line{Base: models.Base{ID: newID("line")}, Thickness: float64(f.thickness)}
	if f.lean == "L" {
		line.X, line.Y, line.X2, line.Y2 = float64(x), float64(y), float64(x+w), float64(y+h)
	} else {
		line.X, line.Y, line.X2, line.Y2 = float64(x), float64(y+h), float64(x+w), float64(y)
	}
	p.elements = append(p.elements, line)
	p.extend(x+w, y+h)
}

func (p *parser) extend(x, y int) {
	p.maxX = max(p.maxX, x)
	p.maxY = max(p.maxY, y)
}

func (p *parser) fail(line int, content, reason string) {
	p.errors = append(p.errors, &models.ParseError{Line: line, Content: content, Reason: reason})
}

func toMM(dots, dpi int) float64 {
	return math.Round(float64(dots)*mmPerInch/float64(dpi)*100) / 100
}

func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func firstParam(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}

func stringAt(params []string, i int) string {
	if i >= len(params) {
		return ""
	}
	return params[i]
}

// intAt reads params[i], falling back when it is absent or not a number.
func intAt(params []string, i, fallback int) int {
	if i >= len(params) {
		return fallback
	}
	v, err := strconv.Atoi(params[i])
	if err != nil {
		return fallback
	}
	return v
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newID(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.New().String())
}
