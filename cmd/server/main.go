package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/label-designer/backend/internal/api"
	"github.com/label-designer/backend/internal/config"
	"github.com/label-designer/backend/internal/driver"
	"github.com/label-designer/backend/internal/loader"
	"github.com/label-designer/backend/internal/logging"
	"github.com/label-designer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "label-server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("label-server", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", defaultConfigPath(), "path to the XML configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	logger := logging.Init("label-server", cfg.Advanced.LogLevel)
	api.ExposeErrorDetails = logger.GetLevel() <= zerolog.DebugLevel

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := driver.DefaultRegistry(cfg.Codec.DefaultDPI)
	deps := &api.Dependencies{
		Store:             store,
		Registry:          registry,
		Loader:            loader.New(registry, cfg.Codec.LegacyCharset),
		LegacyCharset:     cfg.Codec.LegacyCharset,
		AllowedExtensions: cfg.AllowedExtensions(),
		Version:           Version,
	}

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:         logger,
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
		Timeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	})
	api.RegisterRoutes(e, api.NewHandlers(deps), api.RouteOptions{
		AllowTemplateDeletion: cfg.Security.AllowTemplateDeletion,
	})

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("config", *configPath).
		Str("listen", cfg.GetServerAddr()).
		Str("data_dir", cfg.GetDataDir()).
		Str("storage", cfg.Storage.Backend).
		Int("default_dpi", cfg.Codec.DefaultDPI).
		Msg("label server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// defaultConfigPath places the config next to the executable.
func defaultConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "LabelDesigner.config"
	}
	return filepath.Join(filepath.Dir(exePath), "LabelDesigner.config")
}

func openStore(cfg *config.AppConfig) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFiles:
		return storage.NewLocalStore(cfg.Storage.TemplatesDirectory)
	default:
		return storage.NewDuckStore(cfg.GetDataDir(), storage.DuckOptions{
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		})
	}
}
