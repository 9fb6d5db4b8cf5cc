package tpcl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/label-designer/backend/internal/models"
)

// command is one {...} block with its source line.
type command struct {
	line   int
	raw    string
	tag    string
	params []string
}

// parser carries the per-call state of a decode.
type parser struct {
	codec    *Codec
	template *models.LabelTemplate
	errors   []*models.ParseError
	texts    map[string]*models.Text
	barcodes map[string]models.Element
	sized    bool
	quantity int

	// fields in definition order, fields in data order, then graphics
	defined  []models.Element
	filled   []models.Element
	graphics []models.Element
}

// Parse decodes a TPCL payload. It never fails: commands it cannot use are
// skipped and reported as ParseErrors.
func (c *Codec) Parse(text string, name string) (*models.LabelTemplate, []*models.ParseError) {
	p := &parser{
		codec: c,
		template: &models.LabelTemplate{
			Name:     name,
			Width:    DefaultWidthMM,
			Height:   DefaultHeightMM,
			Elements: make([]models.Element, 0),
			Protocol: models.ProtocolTPCL,
		},
		errors:   make([]*models.ParseError, 0),
		texts:    make(map[string]*models.Text),
		barcodes: make(map[string]models.Element),
	}

	for _, cmd := range p.tokenize(text) {
		p.apply(cmd)
	}

	if !p.sized {
		p.fail(0, "", "missing size command, using default label size")
	}
	p.template.Elements = p.ordered()
	settings := models.PrintSettings{Quantity: p.quantity}.WithDefaults(models.ProtocolTPCL)
	p.template.Settings = &settings

	return p.template, p.errors
}

// tokenize extracts every {...} block with a linear scan. Commands never
// nest, so a block ends at the first closing brace.
func (p *parser) tokenize(text string) []command {
	cmds := make([]command, 0)
	line := 1
	pos := 0
	for {
		open := strings.IndexByte(text[pos:], '{')
		if open < 0 {
			p.stray(line, text[pos:])
			break
		}
		p.stray(line, text[pos:pos+open])
		line += strings.Count(text[pos:pos+open], "\n")
		start := pos + open
		end := strings.IndexByte(text[start:], '}')
		if end < 0 {
			p.fail(line, text[start:], "unterminated command")
			break
		}
		raw := text[start : start+end+1]
		body := strings.TrimSuffix(raw[1:len(raw)-1], "|")

		cmd := command{line: line, raw: raw}
		if head, rest, ok := strings.Cut(body, ";"); ok {
			cmd.tag = strings.TrimSpace(head)
			cmd.params = splitParams(rest)
		} else {
			cmd.tag = strings.TrimSpace(body)
		}
		cmds = append(cmds, cmd)

		line += strings.Count(raw, "\n")
		pos = start + end + 1
	}
	return cmds
}

// stray reports text found between commands. Line breaks are the only
// expected separator.
func (p *parser) stray(line int, gap string) {
	trimmed := strings.TrimSpace(gap)
	if trimmed == "" {
		return
	}
	line += strings.Count(gap[:strings.Index(gap, trimmed)], "\n")
	p.fail(line, trimmed, "text outside command")
}

func splitParams(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (p *parser) apply(cmd command) {
	tag := cmd.tag
	switch {
	case tag == "C", tag == "AX", tag == "AY":
		// buffer clear and fine adjustments carry nothing for the model
	case tag == "XS":
		p.applyIssue(cmd)
	case tag == "LC":
		p.applyLine(cmd)
	case tag == "XR":
		p.applyRectangle(cmd)
	case strings.HasPrefix(tag, "PC") && isDigits(tag[2:]):
		p.applyTextDefinition(cmd)
	case strings.HasPrefix(tag, "RC") && isDigits(tag[2:]):
		p.applyTextData(cmd)
	case strings.HasPrefix(tag, "XB") && isDigits(tag[2:]):
		p.applyBarcodeDefinition(cmd)
	case strings.HasPrefix(tag, "RB") && isDigits(tag[2:]):
		p.applyBarcodeData(cmd)
	case strings.HasPrefix(tag, "D"):
		p.applySize(cmd)
	default:
		p.fail(cmd.line, cmd.raw, "unsupported command")
	}
}

// applySize accepts both {D;pitch,width,...} and the bare {Dpitch,width,...}.
func (p *parser) applySize(cmd command) {
	params := cmd.params
	if cmd.tag != "D" {
		rest := cmd.tag[1:]
		if !isNumericList(rest) {
			p.fail(cmd.line, cmd.raw, "unsupported command")
			return
		}
		params = splitParams(rest)
	}
	if len(params) < 2 {
		p.fail(cmd.line, cmd.raw, "size command needs pitch and width")
		return
	}
	nums, ok := atois(params[:2])
	if !ok || nums[0] <= 0 || nums[1] <= 0 {
		p.fail(cmd.line, cmd.raw, "invalid label size")
		return
	}
	p.template.Height = float64(nums[0]) / 10
	p.template.Width = float64(nums[1]) / 10
	p.sized = true
}

func (p *parser) applyTextDefinition(cmd command) {
	if len(cmd.params) < 5 {
		p.fail(cmd.line, cmd.raw, "text definition needs at least 5 parameters")
		return
	}
	nums, ok := atois(cmd.params[:4])
	if !ok {
		p.fail(cmd.line, cmd.raw, "invalid text definition parameters")
		return
	}
	font := p.codec.fonts.Lookup(cmd.params[4])
	el := &models.Text{
		Base: models.Base{
			ID:       cmd.tag,
			X:        float64(nums[0]) / 10,
			Y:        float64(nums[1]) / 10,
			Rotation: rotationField(cmd.params, 5),
		},
		Font:       font.Code,
		FontFamily: font.Family,
		FontSize:   font.Size,
		FontWeight: font.Weight,
		FontStyle:  font.Style,
		Width:      float64(nums[2]) / 10,
		Height:     float64(nums[3]) / 10,
	}
	p.texts[cmd.tag] = el
	p.defined = append(p.defined, el)
}

func (p *parser) applyTextData(cmd command) {
	el, ok := p.texts["PC"+cmd.tag[2:]]
	if !ok {
		p.fail(cmd.line, cmd.raw, "text data without definition")
		return
	}
	el.Content = models.StringPtr(dataOf(cmd.raw))
	p.filled = append(p.filled, el)
}

// applyBarcodeDefinition handles the XB namespace shared by barcodes and QR
// codes. Seven parameters with the QR marker in slot three is a QR code;
// anything else is a linear barcode.
func (p *parser) applyBarcodeDefinition(cmd command) {
	params := cmd.params
	if len(params) < 7 {
		p.fail(cmd.line, cmd.raw, "barcode definition needs at least 7 parameters")
		return
	}
	pos, ok := atois(params[:2])
	if !ok {
		p.fail(cmd.line, cmd.raw, "invalid barcode position")
		return
	}
	base := models.Base{ID: cmd.tag, X: float64(pos[0]) / 10, Y: float64(pos[1]) / 10}

	if len(params) == 7 && params[2] == qrMarker {
		if isDigits(params[3]) {
			p.fail(cmd.line, cmd.raw, "ambiguous barcode definition, decoded as QR code")
		}
		size, err := strconv.Atoi(params[4])
		if err != nil {
			p.fail(cmd.line, cmd.raw, "invalid QR cell size")
			return
		}
		base.Rotation = rotationField(params, 6)
		el := &models.QRCode{
			Base:            base,
			Size:            models.ClampInt(size, 1, 20),
			ErrorCorrection: errorCorrection(params[3]),
		}
		p.barcodes[cmd.tag] = el
		p.defined = append(p.defined, el)
		return
	}

	nums, ok := atois([]string{params[4], params[6]})
	if !ok {
		p.fail(cmd.line, cmd.raw, "invalid barcode parameters")
		return
	}
	sym := models.SymbologyCode128
	if entry, found := p.codec.barcodes.Lookup(params[2]); found && entry.Symbology != "" {
		sym = entry.Symbology
	} else {
		p.fail(cmd.line, cmd.raw, fmt.Sprintf("unknown barcode type %q, using code128", params[2]))
	}
	base.Rotation = rotationField(params, 5)
	el := &models.Barcode{
		Base:      base,
		Symbology: sym,
		Width:     float64(nums[0]),
		Height:    float64(nums[1]) / 10,
	}
	if len(params) > 8 {
		el.ShowText = models.BoolPtr(params[8] == "1")
	}
	p.barcodes[cmd.tag] = el
	p.defined = append(p.defined, el)
}

func (p *parser) applyBarcodeData(cmd command) {
	el, ok := p.barcodes["XB"+cmd.tag[2:]]
	if !ok {
		p.fail(cmd.line, cmd.raw, "barcode data without definition")
		return
	}
	switch def := el.(type) {
	case *models.Barcode:
		def.Content = dataOf(cmd.raw)
	case *models.QRCode:
		def.Content = dataOf(cmd.raw)
	}
	p.filled = append(p.filled, el)
}

func (p *parser) applyLine(cmd command) {
	if len(cmd.params) < 4 {
		p.fail(cmd.line, cmd.raw, "line command needs 4 coordinates")
		return
	}
	nums, ok := atois(cmd.params[:4])
	if !ok {
		p.fail(cmd.line, cmd.raw, "invalid line coordinates")
		return
	}
	width := 1.0
	if len(cmd.params) > 5 {
		if w, err := strconv.Atoi(cmd.params[5]); err == nil && w > 0 {
			width = float64(w)
		}
	}
	x1, y1 := float64(nums[0])/10, float64(nums[1])/10
	x2, y2 := float64(nums[2])/10, float64(nums[3])/10

	// line type 1 draws a box
	if len(cmd.params) > 4 && cmd.params[4] == "1" {
		p.graphics = append(p.graphics, &models.Rectangle{
			Base:      models.Base{ID: newID("rect"), X: x1, Y: y1},
			Width:     x2 - x1,
			Height:    y2 - y1,
			Thickness: width,
		})
		return
	}
	p.graphics = append(p.graphics, &models.Line{
		Base:      models.Base{ID: newID("line"), X: x1, Y: y1},
		X2:        x2,
		Y2:        y2,
		Thickness: width,
	})
}

func (p *parser) applyRectangle(cmd command) {
	if len(cmd.params) < 4 {
		p.fail(cmd.line, cmd.raw, "rectangle command needs 4 coordinates")
		return
	}
	nums, ok := atois(cmd.params[:4])
	if !ok {
		p.fail(cmd.line, cmd.raw, "invalid rectangle coordinates")
		return
	}
	x1, y1 := float64(nums[0])/10, float64(nums[1])/10
	p.graphics = append(p.graphics, &models.Rectangle{
		Base:      models.Base{ID: newID("rect"), X: x1, Y: y1},
		Width:     float64(nums[2])/10 - x1,
		Height:    float64(nums[3])/10 - y1,
		Thickness: 1,
	})
}

func (p *parser) applyIssue(cmd command) {
	if len(cmd.params) < 2 {
		p.fail(cmd.line, cmd.raw, "issue command needs a quantity")
		return
	}
	qty, err := strconv.Atoi(cmd.params[1])
	if err != nil || qty < 1 {
		p.fail(cmd.line, cmd.raw, "invalid issue quantity")
		return
	}
	p.quantity = qty
}

// ordered rebuilds the element order. Data commands are emitted in element
// order, so they fix the interleaving of texts and barcodes; a text without
// data stays next to the text defined before it.
func (p *parser) ordered() []models.Element {
	texts := make([]models.Element, 0, len(p.texts))
	for _, el := range p.defined {
		if el.Kind() == models.KindText {
			texts = append(texts, el)
		}
	}

	placed := make(map[models.Element]bool, len(p.defined))
	out := make([]models.Element, 0, len(p.defined)+len(p.graphics))
	next := 0
	for _, el := range p.filled {
		if placed[el] {
			continue
		}
		if el.Kind() == models.KindText {
			for next < len(texts) && texts[next] != el {
				if !placed[texts[next]] {
					out = append(out, texts[next])
					placed[texts[next]] = true
				}
				next++
			}
		}
		out = append(out, el)
		placed[el] = true
	}
	for _, el := range p.defined {
		if !placed[el] {
			out = append(out, el)
			placed[el] = true
		}
	}
	return append(out, p.graphics...)
}

func (p *parser) fail(line int, content, reason string) {
	p.errors = append(p.errors, &models.ParseError{Line: line, Content: content, Reason: reason})
}

// dataOf returns the literal text of a data command: everything after the
// first semicolon, minus the closing "|}" or "}".
func dataOf(raw string) string {
	_, rest, _ := strings.Cut(raw, ";")
	rest = strings.TrimSuffix(rest, "}")
	return strings.TrimSuffix(rest, "|")
}

// rotationField reads a rotation from params[i]. Text uses doubled digits
// such as "11", so only the first digit counts.
func rotationField(params []string, i int) int {
	if i >= len(params) || params[i] == "" {
		return 0
	}
	r, err := strconv.Atoi(params[i][:1])
	if err != nil {
		return 0
	}
	return models.NormalizeRotation(r)
}

func atois(fields []string) ([]int, bool) {
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isNumericList(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != ',' && c != ' ' {
			return false
		}
	}
	return true
}

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
