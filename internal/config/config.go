// Package config loads the registry's HCL configuration file.
package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the top-level configuration for the registry server.
type Config struct {
	// BaseURL is the public address of this registry, used in responses
	// that carry links.
	BaseURL string `hcl:"base_url,optional"`

	// ListenAddr is the address the HTTP server binds to. Defaults to
	// ":8000".
	ListenAddr string `hcl:"listen_addr,optional"`

	// LogLevel controls logger verbosity (trace, debug, info, warn,
	// error). Defaults to "info".
	LogLevel string `hcl:"log_level,optional"`

	// Postgres configures the production database. Mutually exclusive
	// with SQLite.
	Postgres *Postgres `hcl:"postgres,block"`

	// SQLite configures an embedded database for single-node or
	// evaluation deployments.
	SQLite *SQLite `hcl:"sqlite,block"`

	// Storage configures external storage-URL resolution.
	Storage *Storage `hcl:"storage,block"`

	// Cache configures the cache-invalidation publisher. When absent,
	// invalidation events are logged instead of published.
	Cache *Cache `hcl:"cache,block"`
}

// Postgres holds PostgreSQL connection settings.
type Postgres struct {
	Host     string `hcl:"host"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// SQLite holds embedded database settings.
type SQLite struct {
	Path string `hcl:"path"`
}

// Storage holds storage-location resolver settings.
type Storage struct {
	// SharePointBaseURL is the Microsoft Graph endpoint used to look up
	// item URLs, e.g. "https://graph.microsoft.com/v1.0".
	SharePointBaseURL string `hcl:"sharepoint_base_url,optional"`

	// SharePointDefaultSiteID and SharePointDefaultDriveID fill in for
	// documents registered without their own site/drive identifiers.
	SharePointDefaultSiteID  string `hcl:"sharepoint_default_site_id,optional"`
	SharePointDefaultDriveID string `hcl:"sharepoint_default_drive_id,optional"`

	// ConfluenceBaseURL is the Confluence deployment address, e.g.
	// "https://example.atlassian.net".
	ConfluenceBaseURL string `hcl:"confluence_base_url,optional"`
}

// Cache holds cache-invalidation publisher settings.
type Cache struct {
	Brokers []string `hcl:"brokers"`
	Topic   string   `hcl:"topic"`
}

// FromFile loads and parses the configuration file at path.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Postgres != nil {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	}
}

// Validate checks the configuration, accumulating all problems so a broken
// file is reported in one pass.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Postgres == nil && c.SQLite == nil {
		result = multierror.Append(result,
			fmt.Errorf("either a postgres or a sqlite block is required"))
	}
	if c.Postgres != nil && c.SQLite != nil {
		result = multierror.Append(result,
			fmt.Errorf("postgres and sqlite blocks are mutually exclusive"))
	}
	if c.SQLite != nil && c.SQLite.Path == "" {
		result = multierror.Append(result,
			fmt.Errorf("sqlite block requires a path"))
	}
	if c.Cache != nil {
		if len(c.Cache.Brokers) == 0 {
			result = multierror.Append(result,
				fmt.Errorf("cache block requires at least one broker"))
		}
		if c.Cache.Topic == "" {
			result = multierror.Append(result,
				fmt.Errorf("cache block requires a topic"))
		}
	}

	return result.ErrorOrNil()
}
