// Package main is the entry point for the routegrid server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/routegrid/routegrid/internal/config"
	"github.com/routegrid/routegrid/internal/dispatch"
	"github.com/routegrid/routegrid/internal/observability"
	"github.com/routegrid/routegrid/internal/router"
	"github.com/routegrid/routegrid/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	run(app, flags.configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("ROUTEGRID_CONFIG_PATH", "configs/routegrid.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("ROUTEGRID_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("ROUTEGRID_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("routegrid version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting routegrid",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := config.Validate(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("address", cfg.Listener.Address),
		observability.Int("ignore_rules", len(cfg.Ignore)),
	)

	return cfg
}

// application holds all application components.
type application struct {
	server  *server.Server
	metrics *observability.Metrics
	config  *config.Config
}

// initApplication wires the registry, the pipeline, and the listener.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	metrics := observability.NewMetrics("routegrid")

	top := buildTopService(logger)
	registry, err := router.NewRegistry(top, cfg.Defaults, logger)
	if err != nil {
		logger.Fatal("failed to build route registry", observability.Error(err))
	}

	pipe, err := dispatch.New(registry, cfg,
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(metrics),
	)
	if err != nil {
		logger.Fatal("failed to build dispatch pipeline", observability.Error(err))
	}

	mux := http.NewServeMux()
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	mux.Handle("/", pipe)

	srv := server.New(cfg.Listener, mux,
		server.WithLogger(logger),
		server.WithListeningStarted(top.ListeningStarted),
	)

	return &application{
		server:  srv,
		metrics: metrics,
		config:  cfg,
	}
}

// buildTopService assembles the service tree hosted by this binary.
// Embedders register their own services here.
func buildTopService(logger observability.Logger) *router.Service {
	top := &router.Service{
		Routes: []router.RouteSpec{
			{
				Method: http.MethodGet,
				Path:   "",
				Name:   "root.info",
				Handler: func(c *router.Context) error {
					return c.JSON(http.StatusOK, map[string]string{
						"name":    "routegrid",
						"version": version,
					})
				},
			},
		},
		Subservices: []*router.Service{
			router.NewHealthService(version),
		},
		RouteError: func(c *router.Context, err error) {
			logger.Error("route error",
				observability.String("path", c.Path()),
				observability.Error(err),
			)
		},
		ListeningStarted: func(addr string) {
			logger.Info("accepting requests", observability.String("address", addr))
		},
	}
	return top
}

// run starts the server and blocks until a shutdown signal arrives.
func run(app *application, configPath string, logger observability.Logger) {
	if err := app.server.Start(context.Background()); err != nil {
		logger.Fatal("failed to start server", observability.Error(err))
	}

	watcher := startConfigWatcher(configPath, logger)

	waitForShutdown(app, watcher, logger)
}

// startConfigWatcher watches the configuration file. The registry is
// immutable once built, so a change only logs that a restart is needed.
func startConfigWatcher(configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(*config.Config) {
		logger.Warn("configuration changed on disk; restart to apply")
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
	}

	return watcher
}

// waitForShutdown waits for a shutdown signal and performs graceful
// shutdown.
func waitForShutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	timeout := time.Duration(app.config.Listener.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	logger.Info("routegrid stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
