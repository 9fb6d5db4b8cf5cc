package driver

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/tpcl"
	"github.com/label-designer/backend/internal/zpl"
)

// Registry holds the available drivers in registration order.
type Registry struct {
	mu      sync.RWMutex
	drivers []Driver
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// NewRegistry creates a registry holding the given drivers.
func NewRegistry(drivers ...Driver) *Registry {
	return &Registry{drivers: append([]Driver(nil), drivers...)}
}

// DefaultRegistry returns a registry with every built-in driver. dpi is the
// default resolution for dot-based protocols.
func DefaultRegistry(dpi int) *Registry {
	return NewRegistry(
		tpcl.NewCodec(),
		zpl.NewCodec(dpi),
	)
}

// GetGlobalRegistry returns the singleton registry at the default resolution.
func GetGlobalRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = DefaultRegistry(models.DefaultDPI)
	})
	return globalRegistry
}

// Register adds a driver. A driver with the same name replaces the old one.
func (r *Registry) Register(d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.drivers {
		if strings.EqualFold(existing.Name(), d.Name()) {
			r.drivers[i] = d
			return
		}
	}
	r.drivers = append(r.drivers, d)
}

// GetDriverByName returns a driver by name or protocol tag, ignoring case.
func (r *Registry) GetDriverByName(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.drivers {
		if strings.EqualFold(d.Name(), name) || strings.EqualFold(string(d.Protocol()), name) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
}

// ForTemplate returns the driver for a template's protocol.
func (r *Registry) ForTemplate(t *models.LabelTemplate) (Driver, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil template", ErrUnknownDriver)
	}
	return r.GetDriverByName(string(t.Protocol))
}

// FindDriver picks a driver by the extension of fileName.
func (r *Registry) FindDriver(fileName string) (Driver, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return nil, fmt.Errorf("%w: no extension on %s", ErrUnknownDriver, fileName)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.drivers {
		for _, e := range d.Extensions() {
			if e == ext {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no driver for extension %s", ErrUnknownDriver, ext)
}

// Drivers returns the registered drivers in registration order.
func (r *Registry) Drivers() []Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Driver(nil), r.drivers...)
}

// Extensions returns every payload extension the registry understands.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var exts []string
	for _, d := range r.drivers {
		exts = append(exts, d.Extensions()...)
	}
	return exts
}
