// Package services implements the document lifecycle subsystem: record
// management, version transitions, cascading deletion and the hooks into
// storage-URL resolution and cache invalidation.
package services

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/complyforge/docregistry/pkg/cacheinval"
	"github.com/complyforge/docregistry/pkg/models"
	"github.com/complyforge/docregistry/pkg/storagelocation"
)

// DefaultHardDeleteTimeout bounds the cascade-delete transaction.
const DefaultHardDeleteTimeout = 30 * time.Second

// DocumentService orchestrates document reads and writes. All state lives
// in the database; concurrent writers are reconciled only by the optimistic
// version check on AdvanceVersion and by the persistence layer's uniqueness
// constraints.
type DocumentService struct {
	db       *gorm.DB
	resolver *storagelocation.Resolver
	notifier *cacheinval.Notifier
	log      hclog.Logger

	hardDeleteTimeout time.Duration
}

// NewDocumentService creates the service.
func NewDocumentService(
	db *gorm.DB,
	resolver *storagelocation.Resolver,
	notifier *cacheinval.Notifier,
	log hclog.Logger,
) *DocumentService {
	return &DocumentService{
		db:                db,
		resolver:          resolver,
		notifier:          notifier,
		log:               log,
		hardDeleteTimeout: DefaultHardDeleteTimeout,
	}
}

// Actor identifies the authenticated user performing a mutation. Identity
// resolution happens upstream; the service uses it only for audit stamping.
type Actor struct {
	ID    string
	Email string
}

// actorUser resolves the actor to a user row, creating it on first sight.
// Returns nil without error when the actor carries no email (e.g. internal
// tooling), in which case audit columns stay empty.
func (s *DocumentService) actorUser(db *gorm.DB, actor Actor) (*models.User, error) {
	if actor.Email == "" {
		return nil, nil
	}

	u := models.User{
		EmailAddress: actor.Email,
		ExternalID:   actor.ID,
	}
	if err := u.FirstOrCreate(db); err != nil {
		return nil, err
	}
	return &u, nil
}

func userIDPtr(u *models.User) *uint {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

// invalidate fires the cache-invalidation signal without blocking the
// caller. The notifier is optional so tests and tooling can run without
// one.
func (s *DocumentService) invalidate(documentID, operation string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Invalidate(documentID, operation)
}
