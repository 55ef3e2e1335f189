package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/complyforge/docregistry/internal/config"
	"github.com/complyforge/docregistry/internal/services"
)

// Server carries the shared dependencies handed to every HTTP handler.
type Server struct {
	// Config is the loaded configuration.
	Config *config.Config

	// DB is the database handle. Handlers that only need the document
	// lifecycle should go through Documents instead.
	DB *gorm.DB

	// Documents is the document lifecycle service.
	Documents *services.DocumentService

	// Logger is the logger for the server.
	Logger hclog.Logger
}
