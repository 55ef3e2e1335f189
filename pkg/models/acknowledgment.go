package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Acknowledgment records a user confirming they have read a document. One
// row per (document, user, version read).
type Acknowledgment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_acknowledgments_doc_user_version;index:idx_acknowledgments_document" json:"documentId"`
	Document   *Document `json:"-"`

	UserID uint  `gorm:"not null;uniqueIndex:idx_acknowledgments_doc_user_version" json:"userId"`
	User   *User `json:"user,omitempty"`

	// Version is the document version label that was acknowledged.
	Version string `gorm:"type:varchar(100);not null;uniqueIndex:idx_acknowledgments_doc_user_version" json:"version"`

	AcknowledgedAt time.Time `gorm:"not null" json:"acknowledgedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Acknowledgment) TableName() string {
	return "acknowledgments"
}

// BeforeCreate hook to default the acknowledgment time.
func (a *Acknowledgment) BeforeCreate(tx *gorm.DB) error {
	if a.AcknowledgedAt.IsZero() {
		a.AcknowledgedAt = time.Now()
	}
	return nil
}

// Create creates the acknowledgment.
func (a *Acknowledgment) Create(db *gorm.DB) error {
	return db.Create(&a).Error
}
