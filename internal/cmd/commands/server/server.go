// Package server implements the command that runs the registry HTTP
// server.
package server

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"gorm.io/gorm"

	apiv2 "github.com/complyforge/docregistry/internal/api/v2"
	"github.com/complyforge/docregistry/internal/config"
	"github.com/complyforge/docregistry/internal/server"
	"github.com/complyforge/docregistry/internal/services"
	"github.com/complyforge/docregistry/pkg/cacheinval"
	"github.com/complyforge/docregistry/pkg/database"
	"github.com/complyforge/docregistry/pkg/models"
	"github.com/complyforge/docregistry/pkg/storagelocation"
)

// Command runs the registry server.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the registry server"
}

func (c *Command) Help() string {
	return `Usage: docregistry server [options]

  Run the document registry server.

  With no config file, the server runs in embedded mode: a SQLite
  database at ./docregistry.db and invalidation events written to the
  log instead of a broker.

Options:

  -config=<path>
    Path to an HCL configuration file.
`
}

func (c *Command) flags() *flag.FlagSet {
	f := flag.NewFlagSet("server", flag.ContinueOnError)
	f.StringVar(&c.flagConfig, "config", "", "Path to the configuration file")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.loadConfig()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "docregistry",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	db, err := c.connectDatabase(cfg, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	resolver := c.buildResolver(cfg, log)

	notifier, cleanup, err := c.buildNotifier(cfg, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating cache notifier: %v", err))
		return 1
	}
	defer cleanup()

	documents := services.NewDocumentService(db, resolver, notifier, log)

	srv := server.Server{
		Config:    cfg,
		DB:        db,
		Documents: documents,
		Logger:    log,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, srv)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		return 1

	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("error shutting down server", "error", err)
			return 1
		}

		// Let in-flight invalidation deliveries finish.
		notifier.Wait()
		return 0
	}
}

// loadConfig reads the config file when one was given, or falls back to an
// embedded-mode configuration.
func (c *Command) loadConfig() (*config.Config, error) {
	if c.flagConfig == "" {
		cfg := &config.Config{
			SQLite: &config.SQLite{Path: "docregistry.db"},
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.FromFile(c.flagConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return cfg, nil
}

// connectDatabase opens the configured database. Embedded SQLite databases
// are migrated in place; Postgres deployments are expected to have run the
// migration tool already.
func (c *Command) connectDatabase(
	cfg *config.Config, log hclog.Logger,
) (*gorm.DB, error) {
	if cfg.SQLite != nil {
		db, err := database.ConnectSQLite(cfg.SQLite.Path, log)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
			return nil, fmt.Errorf("error migrating database: %w", err)
		}
		return db, nil
	}

	return database.Connect(database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	}, log)
}

func (c *Command) buildResolver(
	cfg *config.Config, log hclog.Logger,
) *storagelocation.Resolver {
	var storageCfg storagelocation.Config
	if cfg.Storage != nil {
		storageCfg = storagelocation.Config{
			SharePointBaseURL: cfg.Storage.SharePointBaseURL,
			DefaultSiteID:     cfg.Storage.SharePointDefaultSiteID,
			DefaultDriveID:    cfg.Storage.SharePointDefaultDriveID,
			ConfluenceBaseURL: cfg.Storage.ConfluenceBaseURL,
		}
	}
	return storagelocation.New(storageCfg, log)
}

// buildNotifier creates the cache-invalidation notifier, falling back to
// the log backend when no broker is configured.
func (c *Command) buildNotifier(
	cfg *config.Config, log hclog.Logger,
) (*cacheinval.Notifier, func(), error) {
	if cfg.Cache == nil {
		backend := cacheinval.NewLogBackend(log)
		return cacheinval.NewNotifier(backend, log), func() {}, nil
	}

	backend, err := cacheinval.NewKafkaBackend(cacheinval.KafkaConfig{
		Brokers: cfg.Cache.Brokers,
		Topic:   cfg.Cache.Topic,
	})
	if err != nil {
		return nil, nil, err
	}
	return cacheinval.NewNotifier(backend, log), backend.Close, nil
}

func registerRoutes(mux *http.ServeMux, srv server.Server) {
	mux.Handle("/api/v2/documents", apiv2.DocumentsHandler(srv))
	mux.Handle("/api/v2/documents/", apiv2.DocumentHandler(srv))
	mux.Handle("/health", apiv2.HealthHandler(srv))
}
