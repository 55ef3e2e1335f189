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

// AdvanceVersionInput carries a version transition request.
type AdvanceVersionInput struct {
	// ExpectedVersion is the version the caller believes is current. A
	// mismatch with the stored version fails the transition.
	ExpectedVersion string `json:"expectedVersion"`

	// NewVersion is the label to transition to. Labels are opaque; the
	// registry imposes no ordering.
	NewVersion string `json:"newVersion"`

	// ChangeNotes describes what changed in the new version.
	ChangeNotes *string `json:"changeNotes,omitempty"`

	// Optional review-date updates applied together with the transition.
	// Empty string clears the field.
	LastReviewDate *string `json:"lastReviewDate,omitempty"`
	NextReviewDate *string `json:"nextReviewDate,omitempty"`
}

// AdvanceVersion performs an optimistic compare-and-swap on the document's
// current version: the transition only happens when the caller's expected
// version matches the stored one. No locks are held; a mismatch reports the
// actual current version so the caller can reconcile.
func (s *DocumentService) AdvanceVersion(
	ctx context.Context,
	actor Actor,
	id uuid.UUID,
	input AdvanceVersionInput,
) (*models.Document, error) {
	if err := validation.ValidateStruct(&input,
		validation.Field(&input.ExpectedVersion, validation.Required),
		validation.Field(&input.NewVersion, validation.Required),
	); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var lastReview, nextReview *time.Time
	if input.LastReviewDate != nil {
		t, err := parseDateValue(*input.LastReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		lastReview = t
	}
	if input.NextReviewDate != nil {
		t, err := parseDateValue(*input.NextReviewDate)
		if err != nil {
			return nil, &ValidationError{Err: err}
		}
		nextReview = t
	}

	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	if doc.Version != input.ExpectedVersion {
		return nil, &ConflictError{
			Reason:         ConflictVersionMismatch,
			CurrentVersion: doc.Version,
		}
	}

	actorRow, err := s.actorUser(s.db, actor)
	if err != nil {
		return nil, fmt.Errorf("error resolving actor: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		history := models.DocumentVersionHistory{
			DocumentID:  doc.ID,
			Version:     input.NewVersion,
			ChangeNotes: input.ChangeNotes,
			Snapshot:    doc.StorageIdentifiers(),
		}
		if err := history.Upsert(tx, userIDPtr(actorRow)); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"version": input.NewVersion,
		}
		// Approved documents track "last changed" distinctly from "last
		// reviewed".
		if doc.Status == models.DocumentStatusApproved {
			updates["last_changed_date"] = time.Now()
		}
		if input.LastReviewDate != nil {
			updates["last_review_date"] = lastReview
		}
		if input.NextReviewDate != nil {
			updates["next_review_date"] = nextReview
		}

		return tx.
			Model(&models.Document{}).
			Where("id = ?", doc.ID).
			Updates(updates).
			Error
	})
	if err != nil {
		// Two concurrent transitions to the same label race past the
		// history existence check; the loser hits the unique constraint.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{
				Reason:         ConflictVersionExists,
				CurrentVersion: doc.Version,
			}
		}
		return nil, fmt.Errorf("error advancing version: %w", err)
	}

	s.invalidate(doc.ID.String(), "version-advance")

	return s.Get(ctx, doc.ID)
}

// VersionNotes is the notes payload for one version of a document.
type VersionNotes struct {
	DocumentID string  `json:"documentId"`
	Version    string  `json:"version"`
	Notes      *string `json:"notes"`
}

// CurrentVersion is the pseudo-label that resolves to the document's
// current version in GetVersionNotes.
const CurrentVersion = "current"

// GetVersionNotes returns the recorded notes for a version, or nil notes
// when the version has no history row yet.
func (s *DocumentService) GetVersionNotes(
	ctx context.Context,
	id uuid.UUID,
	version string,
) (*VersionNotes, error) {
	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	if version == "" || version == CurrentVersion {
		version = doc.Version
	}

	history := models.DocumentVersionHistory{
		DocumentID: doc.ID,
		Version:    version,
	}
	if err := history.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VersionNotes{
				DocumentID: doc.ID.String(),
				Version:    version,
			}, nil
		}
		return nil, fmt.Errorf("error getting version history: %w", err)
	}

	return &VersionNotes{
		DocumentID: doc.ID.String(),
		Version:    version,
		Notes:      history.ChangeNotes,
	}, nil
}

// ListVersionHistory returns every recorded version of a document, newest
// first.
func (s *DocumentService) ListVersionHistory(
	ctx context.Context,
	id uuid.UUID,
) ([]models.DocumentVersionHistory, error) {
	doc := models.Document{ID: id}
	if err := doc.Get(s.db); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting document: %w", err)
	}

	rows, err := models.FindVersionHistory(s.db, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing version history: %w", err)
	}
	return rows, nil
}
