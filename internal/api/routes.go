// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/logging"
	"github.com/label-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Registry          *driver.Registry
	Loader            *loader.Loader
	LegacyCharset     string
	AllowedExtensions []string
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Drivers   DriverHandler
	Import    ImportHandler
	Templates TemplateHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Registry),
		Drivers:   NewDriverHandler(deps.Registry, deps.LegacyCharset),
		Import:    NewImportHandler(deps.Loader, deps.Store, deps.AllowedExtensions),
		Templates: NewTemplateHandler(deps.Store, deps.Registry),
	}
}

// RouteOptions toggles optional routes
type RouteOptions struct {
	AllowTemplateDeletion bool
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, opts RouteOptions) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	driverGroup := apiGroup.Group("/drivers")
	driverGroup.GET("", handlers.Drivers.HandleListDrivers)
	driverGroup.GET("/:name", handlers.Drivers.HandleGetDriver)
	driverGroup.GET("/:name/fonts", handlers.Drivers.HandleGetFonts)
	driverGroup.GET("/:name/barcodes", handlers.Drivers.HandleGetBarcodes)
	driverGroup.POST("/:name/generate", handlers.Drivers.HandleGenerate)
	driverGroup.POST("/:name/parse", handlers.Drivers.HandleParse)

	apiGroup.POST("/import", handlers.Import.HandleImport)

	templateGroup := apiGroup.Group("/templates")
	templateGroup.GET("", handlers.Templates.HandleListTemplates)
	templateGroup.POST("", handlers.Templates.HandleCreateTemplate)
	templateGroup.GET("/:id", handlers.Templates.HandleGetTemplate)
	templateGroup.PUT("/:id", handlers.Templates.HandleUpdateTemplate)
	templateGroup.GET("/:id/export", handlers.Templates.HandleExportTemplate)
	if opts.AllowTemplateDeletion {
		templateGroup.DELETE("/:id", handlers.Templates.HandleDeleteTemplate)
	}
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	Logger         zerolog.Logger
	RequestLogging bool
	BodyLimit      string
	Timeout        time.Duration
	EnableCORS     bool
	AllowOrigins   string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.RequestLogging {
		e.Use(logging.RequestLogger(opts.Logger))
	}

	if opts.Timeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      opts.Timeout,
			ErrorMessage: "Request timeout",
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := strings.Split(opts.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
