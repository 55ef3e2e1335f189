package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/complyforge/docregistry/pkg/models"
)

// DocumentInput carries the fields accepted when registering a document.
type DocumentInput struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	DocumentType    string `json:"documentType"`
	Status          string `json:"status,omitempty"`
	Version         string `json:"version,omitempty"`
	StorageLocation string `json:"storageLocation,omitempty"`

	SharePointSiteID   string `json:"sharePointSiteId,omitempty"`
	SharePointDriveID  string `json:"sharePointDriveId,omitempty"`
	SharePointItemID   string `json:"sharePointItemId,omitempty"`
	ConfluenceSpaceKey string `json:"confluenceSpaceKey,omitempty"`
	ConfluencePageID   string `json:"confluencePageId,omitempty"`

	// RequiresAcknowledgement defaults to true for POLICY documents when
	// not explicitly set.
	RequiresAcknowledgement *bool `json:"requiresAcknowledgement,omitempty"`

	LastReviewDate *string `json:"lastReviewDate,omitempty"`
	NextReviewDate *string `json:"nextReviewDate,omitempty"`

	// ChangeNotes, when present, seeds the version history for the
	// document's initial version.
	ChangeNotes *string `json:"changeNotes,omitempty"`

	OwnerEmail string `json:"ownerEmail,omitempty"`
}

// DocumentPatch carries a partial update. Nil fields are left untouched;
// for nullable fields an explicit empty string clears the value.
type DocumentPatch struct {
	Title        *string `json:"title,omitempty"`
	DocumentType *string `json:"documentType,omitempty"`
	Status       *string `json:"status,omitempty"`

	StorageLocation    *string `json:"storageLocation,omitempty"`
	SharePointSiteID   *string `json:"sharePointSiteId,omitempty"`
	SharePointDriveID  *string `json:"sharePointDriveId,omitempty"`
	SharePointItemID   *string `json:"sharePointItemId,omitempty"`
	ConfluenceSpaceKey *string `json:"confluenceSpaceKey,omitempty"`
	ConfluencePageID   *string `json:"confluencePageId,omitempty"`

	RequiresAcknowledgement *bool `json:"requiresAcknowledgement,omitempty"`

	LastReviewDate *string `json:"lastReviewDate,omitempty"`
	NextReviewDate *string `json:"nextReviewDate,omitempty"`

	// ChangeNotes records notes against the document's current version.
	// This path never changes the version label itself.
	ChangeNotes *string `json:"changeNotes,omitempty"`

	OwnerEmail *string `json:"ownerEmail,omitempty"`
}

// Create registers a document. Storage-URL resolution failures are absorbed
// as a nil URL, and a failed initial history write does not fail the
// creation.
func (s *DocumentService) Create(
	ctx context.Context,
	actor Actor,
	input DocumentInput,
	accessToken string,
) (*models.Document, error) {
	if err := validation.ValidateStruct(&input,
		validation.Field(&input.Title, validation.Required),
		validation.Field(&input.DocumentType, validation.Required),
	); err != nil {
		return nil, &ValidationError{Err: err}
	}

	doc := models.Document{
		Title:           input.Title,
		DocumentType:    input.DocumentType,
		Status:          input.Status,
		Version:         input.Version,
		StorageLocation: input.StorageLocation,
	}

	if input.ID != "" {
		id, err := uuid.Parse(input.ID)
		if err != nil {
			return nil, &ValidationError{Err: fmt.Errorf("invalid document id: %w", err)}
		}
		doc.ID = id
	}
	if doc.StorageLocation == "" {
		doc.StorageLocation = models.StorageLocationSharePoint
	}

	setIfNotEmpty(&doc.SharePointSiteID, input.SharePointSiteID)
	setIfNotEmpty(&doc.SharePointDriveID, input.SharePointDriveID)
	setIfNotEmpty(&doc.SharePointItemID, input.SharePointItemID)
	setIfNotEmpty(&doc.ConfluenceSpaceKey, input.ConfluenceSpaceKey)
	setIfNotEmpty(&doc.ConfluencePageID, input.ConfluencePageID)

	// Policies require acknowledgement unless explicitly overridden.
	switch {
	case input.RequiresAcknowledgement != nil:
		doc.RequiresAcknowledgement = *input.RequiresAcknowledgement
	case input.DocumentType == models.DocumentTypePolicy:
		doc.RequiresAcknowledgement = true
	}

	if input.LastReviewDate != nil {
		t, err := parseDateValue(*input.LastReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		doc.LastReviewDate = t
	}
	if input.NextReviewDate != nil {
		t, err := parseDateValue(*input.NextReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		doc.NextReviewDate = t
	}

	if err := doc.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	if input.OwnerEmail != "" {
		owner := models.User{EmailAddress: input.OwnerEmail}
		if err := owner.FirstOrCreate(s.db); err != nil {
			return nil, fmt.Errorf("error resolving owner: %w", err)
		}
		doc.OwnerID = userIDPtr(&owner)
	}

	// Resolve the browsable URL when identifiers are present. Resolution
	// failure leaves the URL nil; the registration still succeeds.
	ids := doc.StorageIdentifiers()
	if s.resolver != nil && s.resolver.Complete(doc.StorageLocation, ids) {
		doc.DocumentURL = s.resolver.Resolve(ctx, doc.StorageLocation, ids, accessToken)
	}

	if err := doc.Create(s.db); err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	// Seed the version history when initial notes were supplied.
	// Best-effort: a history failure must not fail document creation.
	if input.ChangeNotes != nil {
		actorRow, err := s.actorUser(s.db, actor)
		if err != nil {
			s.log.Error("error resolving actor for initial version history",
				"error", err,
				"doc_id", doc.ID,
			)
		} else {
			history := models.DocumentVersionHistory{
				DocumentID:  doc.ID,
				Version:     doc.Version,
				ChangeNotes: input.ChangeNotes,
				Snapshot:    doc.StorageIdentifiers(),
			}
			if err := history.Upsert(s.db, userIDPtr(actorRow)); err != nil {
				s.log.Error("error writing initial version history",
					"error", err,
					"doc_id", doc.ID,
					"version", doc.Version,
				)
			}
		}
	}

	s.invalidate(doc.ID.String(), "create")

	return s.Get(ctx, doc.ID)
}

// Update applies a partial edit. Plain field edits are last-write-wins; the
// only concurrency control in this path is the persistence layer itself.
func (s *DocumentService) Update(
	ctx context.Context,
	actor Actor,
	id uuid.UUID,
	patch DocumentPatch,
	accessToken string,
) (*models.Document, error) {
	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	before := doc.StorageIdentifiers()
	previousType := doc.DocumentType

	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.DocumentType != nil {
		doc.DocumentType = *patch.DocumentType
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.StorageLocation != nil {
		doc.StorageLocation = *patch.StorageLocation
	}
	applyStringPatch(&doc.SharePointSiteID, patch.SharePointSiteID)
	applyStringPatch(&doc.SharePointDriveID, patch.SharePointDriveID)
	applyStringPatch(&doc.SharePointItemID, patch.SharePointItemID)
	applyStringPatch(&doc.ConfluenceSpaceKey, patch.ConfluenceSpaceKey)
	applyStringPatch(&doc.ConfluencePageID, patch.ConfluencePageID)

	// The acknowledgement default applies only when the type transitions
	// into POLICY; moving out of POLICY never silently flips it.
	switch {
	case patch.RequiresAcknowledgement != nil:
		doc.RequiresAcknowledgement = *patch.RequiresAcknowledgement
	case patch.DocumentType != nil &&
		*patch.DocumentType == models.DocumentTypePolicy &&
		previousType != models.DocumentTypePolicy:
		doc.RequiresAcknowledgement = true
	}

	if patch.LastReviewDate != nil {
		t, err := parseDateValue(*patch.LastReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		doc.LastReviewDate = t
	}
	if patch.NextReviewDate != nil {
		t, err := parseDateValue(*patch.NextReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		doc.NextReviewDate = t
	}

	if patch.OwnerEmail != nil {
		if *patch.OwnerEmail == "" {
			doc.OwnerID = nil
			doc.Owner = nil
		} else {
			owner := models.User{EmailAddress: *patch.OwnerEmail}
			if err := owner.FirstOrCreate(s.db); err != nil {
				return nil, fmt.Errorf("error resolving owner: %w", err)
			}
			doc.OwnerID = userIDPtr(&owner)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	// Re-resolve the URL whenever the storage tag or any identifier
	// changed. An incomplete post-change set explicitly clears the URL;
	// a stale value must never survive an identifier edit.
	after := doc.StorageIdentifiers()
	if after != before {
		doc.DocumentURL = nil
		if s.resolver != nil && s.resolver.Complete(doc.StorageLocation, after) {
			doc.DocumentURL = s.resolver.Resolve(ctx, doc.StorageLocation, after, accessToken)
		}
	}

	if err := doc.Save(s.db); err != nil {
		return nil, fmt.Errorf("error updating document: %w", err)
	}

	// Record notes against the current version. This path never changes
	// the version label; that is AdvanceVersion's job.
	if patch.ChangeNotes != nil {
		actorRow, err := s.actorUser(s.db, actor)
		if err != nil {
			return nil, fmt.Errorf("error resolving actor: %w", err)
		}
		history := models.DocumentVersionHistory{
			DocumentID:  doc.ID,
			Version:     doc.Version,
			ChangeNotes: patch.ChangeNotes,
			Snapshot:    after,
		}
		if err := history.Upsert(s.db, userIDPtr(actorRow)); err != nil {
			return nil, fmt.Errorf("error upserting version history: %w", err)
		}
	}

	s.invalidate(doc.ID.String(), "update")

	return s.Get(ctx, doc.ID)
}

// SoftDelete supersedes the document. The row and its history remain; this
// is the reversible counterpart of HardDelete.
func (s *DocumentService) SoftDelete(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	if err := s.db.
		Model(&doc).
		Update("status", models.DocumentStatusSuperseded).
		Error; err != nil {
		return nil, fmt.Errorf("error superseding document: %w", err)
	}

	s.invalidate(doc.ID.String(), "soft-delete")

	return s.Get(ctx, doc.ID)
}

// Get retrieves a document with its owner expanded and review flags
// computed.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	doc.ComputeReviewFlags(time.Now())
	return &doc, nil
}

// ListFilters narrows List results. Zero values match everything.
type ListFilters struct {
	Status       string
	DocumentType string
	OwnerEmail   string

	// OverdueOnly keeps only documents whose review is overdue.
	OverdueOnly bool
}

// List retrieves documents matching the filters, newest first.
func (s *DocumentService) List(ctx context.Context, filters ListFilters) ([]models.Document, error) {
	docs, err := models.FindDocuments(s.db, models.DocumentFilter{
		Status:       filters.Status,
		DocumentType: filters.DocumentType,
		OwnerEmail:   filters.OwnerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}

	now := time.Now()
	out := docs[:0]
	for i := range docs {
		docs[i].ComputeReviewFlags(now)
		if filters.OverdueOnly && !docs[i].IsOverdueReview {
			continue
		}
		out = append(out, docs[i])
	}

	return out, nil
}

func setIfNotEmpty(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}

// applyStringPatch applies a nullable string patch field: nil leaves the
// stored value, empty string clears it, anything else replaces it.
func applyStringPatch(dst **string, patch *string) {
	if patch == nil {
		return
	}
	if *patch == "" {
		*dst = nil
		return
	}
	v := *patch
	*dst = &v
}
