package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentVersionHistory is the audit trail of a document's version labels.
// There is at most one row per (document, version) pair; repeated note
// updates for the same version update the row in place.
type DocumentVersionHistory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_version_history_doc_version;index:idx_version_history_doc" json:"documentId"`
	Version    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_version_history_doc_version" json:"version"`

	// ChangeNotes is free text describing what changed in this version.
	ChangeNotes *string `gorm:"type:text" json:"changeNotes,omitempty"`

	// Snapshot of the provider identifiers active when this version was
	// recorded.
	Snapshot StorageSnapshot `gorm:"serializer:json;type:jsonb" json:"snapshot"`

	CreatedByID *uint `json:"createdById,omitempty"`
	CreatedBy   *User `json:"createdBy,omitempty"`
	UpdatedByID *uint `json:"updatedById,omitempty"`
	UpdatedBy   *User `json:"updatedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StorageSnapshot captures the provider identifiers of a document at a point
// in time. Stored as a JSON blob on history rows.
type StorageSnapshot struct {
	StorageLocation    string `json:"storageLocation"`
	SharePointSiteID   string `json:"sharePointSiteId,omitempty"`
	SharePointDriveID  string `json:"sharePointDriveId,omitempty"`
	SharePointItemID   string `json:"sharePointItemId,omitempty"`
	ConfluenceSpaceKey string `json:"confluenceSpaceKey,omitempty"`
	ConfluencePageID   string `json:"confluencePageId,omitempty"`
}

// TableName specifies the table name.
func (DocumentVersionHistory) TableName() string {
	return "document_version_history"
}

// Get retrieves the history row for a (document, version) pair with audit
// users expanded.
func (h *DocumentVersionHistory) Get(db *gorm.DB) error {
	if err := validation.ValidateStruct(h,
		validation.Field(&h.DocumentID, validation.Required),
		validation.Field(&h.Version, validation.Required),
	); err != nil {
		return err
	}

	return db.
		Preload("CreatedBy").
		Preload("UpdatedBy").
		Where("document_id = ? AND version = ?", h.DocumentID, h.Version).
		First(&h).
		Error
}

// Upsert writes the history row for a (document, version) pair: the first
// write creates it, later writes update notes, snapshot and the updating
// actor while preserving the creating actor.
func (h *DocumentVersionHistory) Upsert(db *gorm.DB, actorID *uint) error {
	if err := validation.ValidateStruct(h,
		validation.Field(&h.DocumentID, validation.Required),
		validation.Field(&h.Version, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		existing := DocumentVersionHistory{
			DocumentID: h.DocumentID,
			Version:    h.Version,
		}
		err := tx.
			Where("document_id = ? AND version = ?", h.DocumentID, h.Version).
			First(&existing).
			Error

		switch {
		case err == nil:
			updates := map[string]interface{}{
				"snapshot":      h.Snapshot,
				"updated_by_id": actorID,
			}
			if h.ChangeNotes != nil {
				updates["change_notes"] = h.ChangeNotes
			}
			if err := tx.
				Model(&DocumentVersionHistory{}).
				Where("id = ?", existing.ID).
				Updates(updates).
				Error; err != nil {
				return err
			}
			h.ID = existing.ID
			return h.Get(tx)

		case err == gorm.ErrRecordNotFound:
			h.CreatedByID = actorID
			h.UpdatedByID = actorID
			return tx.Create(&h).Error

		default:
			return fmt.Errorf("error checking for existing history row: %w", err)
		}
	})
}

// FindVersionHistory retrieves all history rows for a document, newest
// first, with audit users expanded.
func FindVersionHistory(db *gorm.DB, documentID uuid.UUID) ([]DocumentVersionHistory, error) {
	var rows []DocumentVersionHistory
	err := db.
		Preload("CreatedBy").
		Preload("UpdatedBy").
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
