package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is a registered compliance document. The document content itself
// lives in an external storage provider (SharePoint or Confluence); this row
// tracks metadata, lifecycle status and the current version label.
type Document struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Title        string `gorm:"type:varchar(500);not null" json:"title"`
	DocumentType string `gorm:"type:varchar(20);not null;index:idx_documents_type" json:"documentType"`
	Status       string `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_documents_status" json:"status"`

	// Version is an opaque label chosen by the caller. The registry never
	// orders versions; it only compares them for equality.
	Version string `gorm:"type:varchar(100);not null;default:'1.0'" json:"version"`

	// Storage location. Exactly one provider identifier set may be
	// populated, matching StorageLocation.
	StorageLocation    string  `gorm:"type:varchar(20);not null;default:'SHAREPOINT'" json:"storageLocation"`
	SharePointSiteID   *string `gorm:"type:varchar(255)" json:"sharePointSiteId,omitempty"`
	SharePointDriveID  *string `gorm:"type:varchar(255)" json:"sharePointDriveId,omitempty"`
	SharePointItemID   *string `gorm:"type:varchar(255)" json:"sharePointItemId,omitempty"`
	ConfluenceSpaceKey *string `gorm:"type:varchar(255)" json:"confluenceSpaceKey,omitempty"`
	ConfluencePageID   *string `gorm:"type:varchar(255)" json:"confluencePageId,omitempty"`

	// DocumentURL is derived from the active identifier set. It is nil
	// whenever that set is incomplete or resolution failed.
	DocumentURL *string `gorm:"type:varchar(2000)" json:"documentUrl,omitempty"`

	RequiresAcknowledgement bool `gorm:"not null;default:false" json:"requiresAcknowledgement"`

	LastChangedDate *time.Time `json:"lastChangedDate,omitempty"`
	LastReviewDate  *time.Time `json:"lastReviewDate,omitempty"`
	NextReviewDate  *time.Time `json:"nextReviewDate,omitempty"`

	OwnerID *uint `json:"ownerId,omitempty"`
	Owner   *User `json:"owner,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Derived review flags, computed on read. Not persisted.
	IsOverdueReview  bool `gorm:"-" json:"isOverdueReview"`
	IsUpcomingReview bool `gorm:"-" json:"isUpcomingReview"`
}

// Document type values.
const (
	DocumentTypePolicy      = "POLICY"
	DocumentTypeProcedure   = "PROCEDURE"
	DocumentTypeManual      = "MANUAL"
	DocumentTypeRecord      = "RECORD"
	DocumentTypeTemplate    = "TEMPLATE"
	DocumentTypeCertificate = "CERTIFICATE"
	DocumentTypeOther       = "OTHER"
)

// Document status values.
const (
	DocumentStatusDraft      = "DRAFT"
	DocumentStatusInReview   = "IN_REVIEW"
	DocumentStatusApproved   = "APPROVED"
	DocumentStatusSuperseded = "SUPERSEDED"
)

// Storage location values.
const (
	StorageLocationSharePoint = "SHAREPOINT"
	StorageLocationConfluence = "CONFLUENCE"
)

// DocumentTypes lists all valid document type values.
var DocumentTypes = []string{
	DocumentTypePolicy,
	DocumentTypeProcedure,
	DocumentTypeManual,
	DocumentTypeRecord,
	DocumentTypeTemplate,
	DocumentTypeCertificate,
	DocumentTypeOther,
}

// DocumentStatuses lists all valid document status values.
var DocumentStatuses = []string{
	DocumentStatusDraft,
	DocumentStatusInReview,
	DocumentStatusApproved,
	DocumentStatusSuperseded,
}

// ReviewUpcomingWindow is how far ahead of NextReviewDate a document is
// flagged as having an upcoming review.
const ReviewUpcomingWindow = 30 * 24 * time.Hour

// TableName specifies the table name.
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate hook to ensure defaults are set.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DocumentStatusDraft
	}
	if d.Version == "" {
		d.Version = "1.0"
	}
	return nil
}

// Validate checks enum fields and the provider identifier exclusivity
// invariant.
func (d *Document) Validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.DocumentType, validation.Required,
			validation.In(toInterfaces(DocumentTypes)...)),
		validation.Field(&d.Status,
			validation.In(toInterfaces(DocumentStatuses)...)),
		validation.Field(&d.StorageLocation, validation.Required,
			validation.In(StorageLocationSharePoint, StorageLocationConfluence)),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	hasSharePoint := notEmpty(d.SharePointSiteID) || notEmpty(d.SharePointDriveID) ||
		notEmpty(d.SharePointItemID)
	hasConfluence := notEmpty(d.ConfluenceSpaceKey) || notEmpty(d.ConfluencePageID)
	if hasSharePoint && hasConfluence {
		return fmt.Errorf(
			"validation error: SharePoint and Confluence identifiers are mutually exclusive")
	}
	if hasSharePoint && d.StorageLocation != StorageLocationSharePoint {
		return fmt.Errorf(
			"validation error: SharePoint identifiers set but storage location is %s",
			d.StorageLocation)
	}
	if hasConfluence && d.StorageLocation != StorageLocationConfluence {
		return fmt.Errorf(
			"validation error: Confluence identifiers set but storage location is %s",
			d.StorageLocation)
	}

	return nil
}

// Create creates the document.
func (d *Document) Create(db *gorm.DB) error {
	if err := d.Validate(); err != nil {
		return err
	}

	return db.
		Omit(clause.Associations).
		Create(&d).
		Error
}

// Get retrieves the document by ID with the owner expanded.
func (d *Document) Get(db *gorm.DB) error {
	return db.
		Preload("Owner").
		First(&d, "id = ?", d.ID).
		Error
}

// Save persists all fields of the document, including zeroed ones. Callers
// are expected to have loaded the row first; plain field edits are
// last-write-wins.
func (d *Document) Save(db *gorm.DB) error {
	if err := d.Validate(); err != nil {
		return err
	}

	return db.
		Omit(clause.Associations).
		Select("*").
		Omit("created_at").
		Save(&d).
		Error
}

// FindDocuments retrieves documents matching the filter, newest first, with
// owners expanded.
func FindDocuments(db *gorm.DB, filter DocumentFilter) ([]Document, error) {
	q := db.
		Preload("Owner").
		Order("documents.created_at DESC")

	if filter.Status != "" {
		q = q.Where("documents.status = ?", filter.Status)
	}
	if filter.DocumentType != "" {
		q = q.Where("documents.document_type = ?", filter.DocumentType)
	}
	if filter.OwnerEmail != "" {
		q = q.
			Joins("LEFT JOIN users AS owners ON documents.owner_id = owners.id").
			Where("owners.email_address = ?", filter.OwnerEmail)
	}

	var docs []Document
	err := q.Find(&docs).Error
	return docs, err
}

// DocumentFilter narrows FindDocuments results. Zero values match
// everything.
type DocumentFilter struct {
	Status       string
	DocumentType string
	OwnerEmail   string
}

// StorageIdentifiers returns the provider identifiers currently set on the
// document. Nil pointers come back as empty strings.
func (d *Document) StorageIdentifiers() StorageSnapshot {
	return StorageSnapshot{
		StorageLocation:    d.StorageLocation,
		SharePointSiteID:   deref(d.SharePointSiteID),
		SharePointDriveID:  deref(d.SharePointDriveID),
		SharePointItemID:   deref(d.SharePointItemID),
		ConfluenceSpaceKey: deref(d.ConfluenceSpaceKey),
		ConfluencePageID:   deref(d.ConfluencePageID),
	}
}

// ComputeReviewFlags sets the derived overdue/upcoming review flags as of
// the supplied time. Only APPROVED and IN_REVIEW documents with a next
// review date carry flags.
func (d *Document) ComputeReviewFlags(now time.Time) {
	d.IsOverdueReview = false
	d.IsUpcomingReview = false

	if d.Status != DocumentStatusApproved && d.Status != DocumentStatusInReview {
		return
	}
	if d.NextReviewDate == nil {
		return
	}

	if d.NextReviewDate.Before(now) {
		d.IsOverdueReview = true
	} else if d.NextReviewDate.Before(now.Add(ReviewUpcomingWindow)) {
		d.IsUpcomingReview = true
	}
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func notEmpty(s *string) bool {
	return s != nil && *s != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
