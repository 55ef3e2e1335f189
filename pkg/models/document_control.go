package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentControl links a document to a compliance control it satisfies.
// The link is unique per (document, control).
type DocumentControl struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_controls_doc_control;index:idx_document_controls_document" json:"documentId"`
	Document   *Document `json:"-"`

	// ControlRef is the external identifier of the control, e.g.
	// "ISO27001:A.5.1".
	ControlRef string `gorm:"type:varchar(255);not null;uniqueIndex:idx_document_controls_doc_control" json:"controlRef"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (DocumentControl) TableName() string {
	return "document_controls"
}

// Create creates the link. A duplicate (document, control) pair surfaces as
// gorm.ErrDuplicatedKey when error translation is enabled.
func (dc *DocumentControl) Create(db *gorm.DB) error {
	return db.Create(&dc).Error
}
