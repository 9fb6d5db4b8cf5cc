// handlers_templates.go - Template library handlers
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const defaultListLimit = 100

// TemplateResponse is a stored template with its metadata.
type TemplateResponse struct {
	Info     *models.TemplateInfo    `json:"info" msgpack:"info"`
	Template models.TemplateDocument `json:"template" msgpack:"template"`
}

// TemplateHandlerImpl implements the TemplateHandler interface
type TemplateHandlerImpl struct {
	store    storage.Store
	registry *driver.Registry
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(store storage.Store, registry *driver.Registry) TemplateHandler {
	return &TemplateHandlerImpl{
		store:    store,
		registry: registry,
	}
}

// HandleListTemplates lists stored templates, newest first
func (h *TemplateHandlerImpl) HandleListTemplates(c echo.Context) error {
	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}
	list, err := h.store.List(c.Request().Context(), limit)
	if err != nil {
		return toAPIError(err, "failed to list templates")
	}
	return respond(c, http.StatusOK, list)
}

// HandleCreateTemplate stores a new template
func (h *TemplateHandlerImpl) HandleCreateTemplate(c echo.Context) error {
	tmpl, err := decodeTemplate(c)
	if err != nil {
		return err
	}
	if err := h.checkProtocol(tmpl); err != nil {
		return err
	}
	info, err := h.store.Save(c.Request().Context(), tmpl)
	if err != nil {
		return toAPIError(err, "failed to save template")
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleGetTemplate returns one stored template
func (h *TemplateHandlerImpl) HandleGetTemplate(c echo.Context) error {
	tmpl, info, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toAPIError(err, "failed to load template")
	}
	return respond(c, http.StatusOK, TemplateResponse{Info: info, Template: models.ToDocument(tmpl)})
}

// HandleUpdateTemplate replaces a stored template
func (h *TemplateHandlerImpl) HandleUpdateTemplate(c echo.Context) error {
	tmpl, err := decodeTemplate(c)
	if err != nil {
		return err
	}
	if err := h.checkProtocol(tmpl); err != nil {
		return err
	}
	info, err := h.store.Update(c.Request().Context(), c.Param("id"), tmpl)
	if err != nil {
		return toAPIError(err, "failed to update template")
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteTemplate removes a stored template
func (h *TemplateHandlerImpl) HandleDeleteTemplate(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		return toAPIError(err, "failed to delete template")
	}
	log.Info().Str("id", id).Msg("template deleted")
	return c.NoContent(http.StatusNoContent)
}

// HandleExportTemplate downloads a stored template as a payload
// (?driver=, defaulting to the template's protocol) or as a document
// (?format=json|yaml)
func (h *TemplateHandlerImpl) HandleExportTemplate(c echo.Context) error {
	tmpl, _, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toAPIError(err, "failed to load template")
	}
	base := fileBase(tmpl.Name)

	switch strings.ToLower(c.QueryParam("format")) {
	case loader.FormatJSON:
		data, err := loader.EncodeJSON(tmpl)
		if err != nil {
			return toAPIError(err, "failed to encode template")
		}
		return attachment(c, base+".json", echo.MIMEApplicationJSON, data)
	case loader.FormatYAML:
		data, err := loader.EncodeYAML(tmpl)
		if err != nil {
			return toAPIError(err, "failed to encode template")
		}
		return attachment(c, base+".yaml", "application/yaml", data)
	case "":
	default:
		return NewValidationError("format")
	}

	var d driver.Driver
	if name := c.QueryParam("driver"); name != "" {
		d, err = h.registry.GetDriverByName(name)
	} else {
		d, err = h.registry.ForTemplate(tmpl)
	}
	if err != nil {
		return toAPIError(err, "failed to resolve driver")
	}
	if err := matchProtocol(tmpl, d); err != nil {
		return err
	}
	data, err := loader.Render(d, tmpl)
	if err != nil {
		return toAPIError(err, "failed to render payload")
	}
	return attachment(c, base+d.Extensions()[0], payloadContentType(d.Encoding()), data)
}

// checkProtocol rejects templates for protocols no driver handles.
func (h *TemplateHandlerImpl) checkProtocol(t *models.LabelTemplate) error {
	if t.Protocol == "" {
		return NewValidationError("protocol")
	}
	if _, err := h.registry.ForTemplate(t); err != nil {
		return NewBadRequestError("unknown protocol "+string(t.Protocol), nil)
	}
	return nil
}

// fileBase makes a template name safe for a download file name.
func fileBase(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		}
		return -1
	}, name)
	if cleaned == "" {
		return "label"
	}
	return cleaned
}
