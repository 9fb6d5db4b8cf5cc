package models

// PrintSettings controls how a label is issued.
// Resolution is dots per inch and only matters for dot-based protocols.
type PrintSettings struct {
	Quantity   int  `json:"quantity" yaml:"quantity" msgpack:"quantity"`
	Speed      *int `json:"speed,omitempty" yaml:"speed,omitempty" msgpack:"speed,omitempty"`
	Darkness   *int `json:"darkness,omitempty" yaml:"darkness,omitempty" msgpack:"darkness,omitempty"`
	Resolution *int `json:"resolution,omitempty" yaml:"resolution,omitempty" msgpack:"resolution,omitempty"`
}

// DefaultDPI is the resolution assumed for dot-based protocols.
const DefaultDPI = 203

// DefaultSettings returns the settings a new template starts with.
func DefaultSettings(protocol Protocol) PrintSettings {
	switch protocol {
	case ProtocolZPL:
		return PrintSettings{
			Quantity:   1,
			Speed:      IntPtr(4),
			Darkness:   IntPtr(15),
			Resolution: IntPtr(DefaultDPI),
		}
	default:
		return PrintSettings{
			Quantity: 1,
			Speed:    IntPtr(3),
			Darkness: IntPtr(0),
		}
	}
}

// WithDefaults fills missing or invalid fields from the protocol defaults.
func (s PrintSettings) WithDefaults(protocol Protocol) PrintSettings {
	def := DefaultSettings(protocol)
	if s.Quantity < 1 {
		s.Quantity = def.Quantity
	}
	if s.Speed == nil {
		s.Speed = def.Speed
	}
	if s.Darkness == nil {
		s.Darkness = def.Darkness
	}
	if s.Resolution == nil {
		s.Resolution = def.Resolution
	}
	return s
}
