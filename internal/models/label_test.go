package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() *LabelTemplate {
	t := NewLabelTemplate("shipping", 100, 150, ProtocolTPCL)
	t.Elements = append(t.Elements,
		&Text{Base: Base{ID: "PC000", X: 25.3, Y: 35.5}, Content: StringPtr("Hello"), Font: "H", Width: 1, Height: 1},
		&Text{Base: Base{ID: "title", X: 5, Y: 5}, Width: 1, Height: 1},
		&Barcode{Base: Base{ID: "bc", X: 10, Y: 60, Rotation: 1}, Content: "12345", Symbology: SymbologyCode128, Height: 15, Width: 2, ShowText: BoolPtr(true)},
		&QRCode{Base: Base{ID: "qr", X: 60, Y: 60}, Content: "https://example.com", Size: 5, ErrorCorrection: QRErrorMedium},
		&Line{Base: Base{ID: "ln", X: 0, Y: 100}, X2: 100, Y2: 100, Thickness: 3},
		&Rectangle{Base: Base{ID: "box", X: 2, Y: 2}, Width: 96, Height: 146, Thickness: 2},
	)
	return t
}

func TestNormalizeRotation(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 3: 3, 4: 0, 7: 3, -1: 3, -4: 0}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRotation(in), "rotation %d", in)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleTemplate().Validate())

	var nilTemplate *LabelTemplate
	assert.True(t, errors.Is(nilTemplate.Validate(), ErrInvalidTemplate))

	noSize := sampleTemplate()
	noSize.Width = 0
	assert.ErrorIs(t, noSize.Validate(), ErrInvalidTemplate)

	dup := sampleTemplate()
	dup.Elements = append(dup.Elements, &Line{Base: Base{ID: "ln"}})
	assert.ErrorIs(t, dup.Validate(), ErrInvalidTemplate)

	missingID := sampleTemplate()
	missingID.Elements = append(missingID.Elements, &Rectangle{})
	assert.ErrorIs(t, missingID.Validate(), ErrInvalidTemplate)

	nilElement := sampleTemplate()
	nilElement.Elements = append(nilElement.Elements, nil)
	assert.ErrorIs(t, nilElement.Validate(), ErrInvalidTemplate)
}

func TestSettingsDefaults(t *testing.T) {
	zpl := PrintSettings{}.WithDefaults(ProtocolZPL)
	assert.Equal(t, 1, zpl.Quantity)
	require.NotNil(t, zpl.Resolution)
	assert.Equal(t, DefaultDPI, *zpl.Resolution)

	tpcl := PrintSettings{Quantity: 5, Speed: IntPtr(6)}.WithDefaults(ProtocolTPCL)
	assert.Equal(t, 5, tpcl.Quantity)
	assert.Equal(t, 6, *tpcl.Speed)
	assert.Nil(t, tpcl.Resolution)

	tmpl := &LabelTemplate{Protocol: ProtocolZPL}
	assert.Equal(t, DefaultSettings(ProtocolTPCL), tmpl.SettingsFor(ProtocolTPCL))

	tmpl.Settings = &PrintSettings{Quantity: 0, Darkness: IntPtr(20)}
	zpl = tmpl.SettingsFor(ProtocolZPL)
	assert.Equal(t, 1, zpl.Quantity)
	assert.Equal(t, 20, *zpl.Darkness)
	assert.Equal(t, DefaultDPI, *zpl.Resolution)
}

func TestTemplateJSON(t *testing.T) {
	original := sampleTemplate()

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"barcode"`)
	assert.Contains(t, string(data), `"printSettings"`)

	var decoded LabelTemplate
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Name, decoded.Name)
	require.Len(t, decoded.Elements, len(original.Elements))
	assert.Equal(t, original.Elements, decoded.Elements)

	untitled, ok := decoded.Elements[1].(*Text)
	require.True(t, ok)
	assert.False(t, untitled.HasContent(), "absent content must stay absent")
}

func TestUnknownElementType(t *testing.T) {
	var decoded LabelTemplate
	err := json.Unmarshal([]byte(`{"name":"x","width":10,"height":10,"elements":[{"id":"a","type":"ellipse"}]}`), &decoded)
	assert.ErrorContains(t, err, "ellipse")
}

func TestElementKinds(t *testing.T) {
	kinds := make([]ElementKind, 0)
	for _, el := range sampleTemplate().Elements {
		kinds = append(kinds, el.Kind())
	}
	assert.Equal(t, []ElementKind{KindText, KindText, KindBarcode, KindQRCode, KindLine, KindRectangle}, kinds)
}
