package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/complyforge/docregistry/pkg/models"
)

// HardDelete permanently removes a document and every row referencing it,
// in one transaction bounded by the configured timeout. Dependent tables
// are cleared before the document row to avoid foreign-key violations; a
// failure or timeout at any step rolls the whole cascade back, so no
// partial deletion is ever visible. This path is irreversible and distinct
// from SoftDelete.
func (s *DocumentService) HardDelete(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.hardDeleteTimeout)
	defer cancel()

	var doc models.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Owner").
			First(&doc, "id = ?", id).
			Error; err != nil {
			return err
		}

		steps := []struct {
			name  string
			model interface{}
		}{
			{"review tasks", &models.ReviewTask{}},
			{"acknowledgments", &models.Acknowledgment{}},
			{"control links", &models.DocumentControl{}},
			{"risk links", &models.DocumentRisk{}},
			{"version history", &models.DocumentVersionHistory{}},
		}
		for _, step := range steps {
			if err := tx.
				Where("document_id = ?", id).
				Delete(step.model).
				Error; err != nil {
				return fmt.Errorf("error deleting %s: %w", step.name, err)
			}
		}

		return tx.Delete(&models.Document{}, "id = ?", id).Error
	})

	switch {
	case err == nil:
		s.log.Info("hard deleted document",
			"doc_id", id,
			"title", doc.Title,
		)
		s.invalidate(id.String(), "hard-delete")
		return &doc, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound

	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		s.log.Error("hard delete timed out",
			"doc_id", id,
			"timeout", s.hardDeleteTimeout,
		)
		return nil, ErrDeleteTimeout

	default:
		return nil, fmt.Errorf("error hard deleting document: %w", err)
	}
}
