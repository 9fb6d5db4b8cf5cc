package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsoncTemplate = `{
  // shelf label
  "name": "shelf",
  "width": 60,
  "height": 40,
  "protocol": "tpcl",
  "elements": [
    {"id": "price", "type": "text", "x": 5, "y": 10, "content": "4.99",
     "fontFamily": "Helvetica", "fontSize": 12, "fontWeight": "bold", "fontStyle": "normal",
     "width": 1, "height": 1},
    /* trailing commas are fine too */
    {"id": "ean", "type": "barcode", "x": 5, "y": 20, "content": "4006381333931",
     "symbology": "ean13", "height": 10, "width": 2},
  ],
}`

func newLoader() *Loader {
	return New(driver.DefaultRegistry(203), "")
}

func TestLoadJSONC(t *testing.T) {
	res, err := newLoader().Load("shelf.jsonc", []byte(jsoncTemplate))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, res.Format)
	assert.Empty(t, res.Diagnostics)

	tmpl := res.Template
	assert.Equal(t, "shelf", tmpl.Name)
	assert.Equal(t, models.ProtocolTPCL, tmpl.Protocol)
	require.Len(t, tmpl.Elements, 2)
	assert.Equal(t, "4.99", tmpl.Elements[0].(*models.Text).Value())
	assert.Equal(t, models.SymbologyEAN13, tmpl.Elements[1].(*models.Barcode).Symbology)
}

func TestLoadYAMLRoundTrip(t *testing.T) {
	l := newLoader()
	res, err := l.Load("shelf.json", []byte(jsoncTemplate))
	require.NoError(t, err)

	data, err := l.Export(res.Template, "shelf.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "symbology: ean13")

	back, err := l.Load("shelf.yml", data)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, back.Format)
	assert.Equal(t, models.ToDocument(res.Template), models.ToDocument(back.Template))
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	_, err := newLoader().Load("bad.json", []byte(`{"name":"x","width":0,"height":10,"elements":[]}`))
	assert.ErrorIs(t, err, models.ErrInvalidTemplate)

	_, err = newLoader().Load("bad.json", []byte(`{"name":"x","width":10,"height":10,"elements":[{"id":"a","type":"circle"}]}`))
	assert.Error(t, err)

	_, err = newLoader().Load("bad.yaml", []byte("elements: [unterminated"))
	assert.Error(t, err)
}

func TestLoadPayloadByExtension(t *testing.T) {
	payload := "^XA\n^PW816\n^LL1218\n^FO50,50^A0N,30,30^FDHello^FS\n^XZ\n"
	res, err := newLoader().Load("/spool/ship-label.ZPL", []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "zpl", res.Format)
	assert.Equal(t, "ship-label", res.Template.Name)
	require.Len(t, res.Template.Elements, 1)
}

func TestLoadLegacyBytes(t *testing.T) {
	payload := "{D0400,0600,0370|}\r\n{PC001;0050,0100,10,10,H,00,B|}\r\n{RC001;Caf\xe9|}\r\n{XS;I,0001,0002C3000|}\r\n"
	res, err := newLoader().Load("menu.tpcl", []byte(payload))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Template.Elements, 1)
	assert.Equal(t, "Café", res.Template.Elements[0].(*models.Text).Value())
}

func TestLoadUnsupported(t *testing.T) {
	_, err := newLoader().Load("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = newLoader().Export(models.NewLabelTemplate("x", 10, 10, models.ProtocolZPL), "x.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportPayloadTranscodes(t *testing.T) {
	tmpl := models.NewLabelTemplate("menu", 60, 40, models.ProtocolTPCL)
	tmpl.Elements = []models.Element{&models.Text{
		Base:    models.Base{ID: "dish", X: 5, Y: 10},
		Content: models.StringPtr("Café → 5€"),
		Font:    "H",
		Width:   1,
		Height:  1,
	}}
	data, err := newLoader().Export(tmpl, "menu.tpcl")
	require.NoError(t, err)
	assert.Contains(t, string(data), "{RC000;Caf\xe9 ? 5\x80|}")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelf.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(jsoncTemplate), 0644))

	res, err := newLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shelf", res.Template.Name)

	_, err = newLoader().LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
