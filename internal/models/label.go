// Package models contains domain types for the label designer.
package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplate is returned when a template is structurally unusable.
var ErrInvalidTemplate = errors.New("invalid label template")

// Protocol identifies a printer command language.
type Protocol string

const (
	ProtocolTPCL Protocol = "tpcl"
	ProtocolZPL  Protocol = "zpl"
)

// LabelTemplate is a fixed-size canvas with placed elements.
// Width and Height are always millimeters; element units depend on Protocol.
type LabelTemplate struct {
	Name     string
	Width    float64
	Height   float64
	Elements []Element
	Settings *PrintSettings
	Protocol Protocol
}

// NewLabelTemplate creates an empty template with protocol default settings.
func NewLabelTemplate(name string, width, height float64, protocol Protocol) *LabelTemplate {
	settings := DefaultSettings(protocol)
	return &LabelTemplate{
		Name:     name,
		Width:    width,
		Height:   height,
		Elements: make([]Element, 0),
		Settings: &settings,
		Protocol: protocol,
	}
}

// Validate checks the preconditions every codec relies on.
func (t *LabelTemplate) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil template", ErrInvalidTemplate)
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: size %gx%g mm", ErrInvalidTemplate, t.Width, t.Height)
	}
	seen := make(map[string]struct{}, len(t.Elements))
	for i, el := range t.Elements {
		if el == nil {
			return fmt.Errorf("%w: element %d is nil", ErrInvalidTemplate, i)
		}
		id := el.ElementID()
		if id == "" {
			return fmt.Errorf("%w: element %d has no id", ErrInvalidTemplate, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate element id %q", ErrInvalidTemplate, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SettingsFor returns the template settings with the defaults of protocol
// filled in.
func (t *LabelTemplate) SettingsFor(protocol Protocol) PrintSettings {
	if t.Settings == nil {
		return DefaultSettings(protocol)
	}
	return t.Settings.WithDefaults(protocol)
}
