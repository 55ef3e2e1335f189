package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRisk links a document to a risk-register entry it mitigates.
type DocumentRisk struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_risks_doc_risk;index:idx_document_risks_document" json:"documentId"`
	Document   *Document `json:"-"`

	// RiskRef is the external identifier of the risk-register entry.
	RiskRef string `gorm:"type:varchar(255);not null;uniqueIndex:idx_document_risks_doc_risk" json:"riskRef"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (DocumentRisk) TableName() string {
	return "document_risks"
}

// Create creates the link.
func (dr *DocumentRisk) Create(db *gorm.DB) error {
	return db.Create(&dr).Error
}
