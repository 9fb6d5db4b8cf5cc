// handlers_import.go - File import handlers
package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ImportResponse is the result of importing one file.
type ImportResponse struct {
	Format      string                  `json:"format" msgpack:"format"`
	Template    models.TemplateDocument `json:"template" msgpack:"template"`
	Diagnostics []*models.ParseError    `json:"diagnostics" msgpack:"diagnostics"`
	Saved       *models.TemplateInfo    `json:"saved,omitempty" msgpack:"saved,omitempty"`
}

// ImportHandlerImpl implements the ImportHandler interface
type ImportHandlerImpl struct {
	loader  *loader.Loader
	store   storage.Store
	allowed map[string]bool
}

// NewImportHandler creates a new import handler. An empty allowed list
// accepts every extension the loader understands.
func NewImportHandler(l *loader.Loader, store storage.Store, allowed []string) ImportHandler {
	h := &ImportHandlerImpl{loader: l, store: store}
	if len(allowed) > 0 {
		h.allowed = make(map[string]bool, len(allowed))
		for _, ext := range allowed {
			h.allowed[strings.ToLower(ext)] = true
		}
	}
	return h
}

// HandleImport decodes a multipart "file" and optionally stores it (save=true)
func (h *ImportHandlerImpl) HandleImport(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if h.allowed != nil && !h.allowed[ext] {
		return NewUnsupportedMediaError(fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return NewBadRequestError("failed to open upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return NewBadRequestError("failed to read upload", err)
	}

	res, err := h.loader.Load(fh.Filename, data)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFormat) {
			return NewUnsupportedMediaError(fh.Filename)
		}
		if apiErr := FromError(err); apiErr != nil {
			return apiErr
		}
		return NewBadRequestError("failed to decode file", err)
	}

	out := ImportResponse{
		Format:      res.Format,
		Template:    models.ToDocument(res.Template),
		Diagnostics: res.Diagnostics,
	}

	save, _ := strconv.ParseBool(c.FormValue("save"))
	if save {
		info, err := h.store.Save(c.Request().Context(), res.Template)
		if err != nil {
			return toAPIError(err, "failed to save template")
		}
		out.Saved = info
		log.Info().Str("id", info.ID).Str("file", fh.Filename).Msg("template imported")
		return respond(c, http.StatusCreated, out)
	}
	return respond(c, http.StatusOK, out)
}
