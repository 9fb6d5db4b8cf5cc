// handlers_drivers.go - Protocol metadata, generate and parse handlers
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/label-designer/backend/internal/charset"
	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/metadata"
	"github.com/label-designer/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DriverInfo describes a registered driver.
type DriverInfo struct {
	Name            string               `json:"name" msgpack:"name"`
	Protocol        models.Protocol      `json:"protocol" msgpack:"protocol"`
	Extensions      []string             `json:"extensions" msgpack:"extensions"`
	Encoding        string               `json:"encoding" msgpack:"encoding"`
	DefaultSettings models.PrintSettings `json:"defaultSettings" msgpack:"defaultSettings"`
}

// ParseResponse is the result of decoding a payload.
type ParseResponse struct {
	Template    models.TemplateDocument `json:"template" msgpack:"template"`
	Diagnostics []*models.ParseError    `json:"diagnostics" msgpack:"diagnostics"`
}

// GenerateResponse is the ?format=json form of a generated payload.
type GenerateResponse struct {
	Payload  string `json:"payload"`
	Encoding string `json:"encoding"`
}

// DriverHandlerImpl implements the DriverHandler interface
type DriverHandlerImpl struct {
	registry      *driver.Registry
	legacyCharset string
}

// NewDriverHandler creates a new driver handler. legacyCharset decodes
// payloads that are not valid UTF-8.
func NewDriverHandler(registry *driver.Registry, legacyCharset string) DriverHandler {
	return &DriverHandlerImpl{
		registry:      registry,
		legacyCharset: legacyCharset,
	}
}

// matchProtocol rejects rendering a template with another protocol's
// driver. Coordinates are in protocol units.
func matchProtocol(t *models.LabelTemplate, d driver.Driver) error {
	if t.Protocol != "" && t.Protocol != d.Protocol() {
		return NewBadRequestError(
			fmt.Sprintf("template protocol %s does not match driver %s", t.Protocol, d.Name()), nil)
	}
	return nil
}

func infoOf(d driver.Driver) DriverInfo {
	return DriverInfo{
		Name:            d.Name(),
		Protocol:        d.Protocol(),
		Extensions:      d.Extensions(),
		Encoding:        d.Encoding(),
		DefaultSettings: d.DefaultSettings(),
	}
}

func (h *DriverHandlerImpl) lookup(c echo.Context) (driver.Driver, error) {
	name := c.Param("name")
	d, err := h.registry.GetDriverByName(name)
	if err != nil {
		return nil, NewNotFoundError("driver", name)
	}
	return d, nil
}

// HandleListDrivers lists every registered driver
func (h *DriverHandlerImpl) HandleListDrivers(c echo.Context) error {
	drivers := h.registry.Drivers()
	list := make([]DriverInfo, 0, len(drivers))
	for _, d := range drivers {
		list = append(list, infoOf(d))
	}
	return respond(c, http.StatusOK, list)
}

// HandleGetDriver describes one driver
func (h *DriverHandlerImpl) HandleGetDriver(c echo.Context) error {
	d, err := h.lookup(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, infoOf(d))
}

// HandleGetFonts returns the driver's font code table
func (h *DriverHandlerImpl) HandleGetFonts(c echo.Context) error {
	d, err := h.lookup(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string][]metadata.Font{"fonts": d.Fonts()})
}

// HandleGetBarcodes returns the driver's barcode code table
func (h *DriverHandlerImpl) HandleGetBarcodes(c echo.Context) error {
	d, err := h.lookup(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string][]metadata.Barcode{"barcodes": d.Barcodes()})
}

// HandleGenerate renders a JSON template as a printer payload
func (h *DriverHandlerImpl) HandleGenerate(c echo.Context) error {
	d, err := h.lookup(c)
	if err != nil {
		return err
	}

	tmpl, err := decodeTemplate(c)
	if err != nil {
		return err
	}
	if err := matchProtocol(tmpl, d); err != nil {
		return err
	}

	if c.QueryParam("format") == "json" {
		payload, err := d.Generate(tmpl)
		if err != nil {
			return toAPIError(err, "failed to generate payload")
		}
		return c.JSON(http.StatusOK, GenerateResponse{Payload: payload, Encoding: d.Encoding()})
	}

	data, err := loader.Render(d, tmpl)
	if err != nil {
		return toAPIError(err, "failed to render payload")
	}
	return c.Blob(http.StatusOK, payloadContentType(d.Encoding()), data)
}

// HandleParse decodes a raw payload into a template plus diagnostics
func (h *DriverHandlerImpl) HandleParse(c echo.Context) error {
	d, err := h.lookup(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read body", err)
	}
	if len(body) == 0 {
		return NewValidationError("body")
	}
	text, err := charset.Decode(body, h.legacyCharset)
	if err != nil {
		return NewBadRequestError("payload is not valid text", err)
	}

	name := c.QueryParam("name")
	if name == "" {
		name = "imported"
	}
	tmpl, diags := d.Parse(text, name)
	if len(diags) > 0 {
		log.Debug().Str("driver", d.Name()).Int("diagnostics", len(diags)).Msg("payload parsed with problems")
	}
	return respond(c, http.StatusOK, ParseResponse{Template: models.ToDocument(tmpl), Diagnostics: diags})
}
