package services

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/complyforge/docregistry/pkg/cacheinval"
	"github.com/complyforge/docregistry/pkg/models"
	"github.com/complyforge/docregistry/pkg/storagelocation"
)

// newTestService wires a service over an isolated in-memory database, a
// Confluence-only resolver (no network) and a recording invalidation
// backend.
func newTestService(t *testing.T) (*DocumentService, *gorm.DB, *cacheinval.TestBackend) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// An in-memory database exists per connection; pin the pool to one so
	// every query sees the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))

	log := hclog.NewNullLogger()
	resolver := storagelocation.New(storagelocation.Config{
		ConfluenceBaseURL: "https://example.atlassian.net",
	}, log)

	backend := cacheinval.NewTestBackend()
	notifier := cacheinval.NewNotifier(backend, log)

	return NewDocumentService(db, resolver, notifier, log), db, backend
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
