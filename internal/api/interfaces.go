// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DriverHandler exposes protocol metadata and the codecs themselves
type DriverHandler interface {
	HandleListDrivers(c echo.Context) error
	HandleGetDriver(c echo.Context) error
	HandleGetFonts(c echo.Context) error
	HandleGetBarcodes(c echo.Context) error
	HandleGenerate(c echo.Context) error
	HandleParse(c echo.Context) error
}

// ImportHandler turns uploaded files into templates
type ImportHandler interface {
	HandleImport(c echo.Context) error
}

// TemplateHandler manages the stored template library
type TemplateHandler interface {
	HandleListTemplates(c echo.Context) error
	HandleCreateTemplate(c echo.Context) error
	HandleGetTemplate(c echo.Context) error
	HandleUpdateTemplate(c echo.Context) error
	HandleDeleteTemplate(c echo.Context) error
	HandleExportTemplate(c echo.Context) error
}
