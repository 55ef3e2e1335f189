package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/complyforge/docregistry/pkg/models"
)

// seedDocumentGraph creates a document with rows in every dependent table.
func seedDocumentGraph(t *testing.T, svc *DocumentService, db *gorm.DB) *models.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := svc.Create(ctx, testActor, DocumentInput{
		Title:        "Doomed Policy",
		DocumentType: models.DocumentTypePolicy,
		ChangeNotes:  strPtr("Initial release"),
	}, "")
	require.NoError(t, err)

	reader := models.User{EmailAddress: "reader@example.com"}
	require.NoError(t, reader.FirstOrCreate(db))

	task := models.ReviewTask{DocumentID: doc.ID, AssigneeID: &reader.ID}
	require.NoError(t, task.Create(db))

	ack := models.Acknowledgment{
		DocumentID: doc.ID,
		UserID:     reader.ID,
		Version:    doc.Version,
	}
	require.NoError(t, ack.Create(db))

	control := models.DocumentControl{DocumentID: doc.ID, ControlRef: "ISO27001:A.5.1"}
	require.NoError(t, control.Create(db))

	risk := models.DocumentRisk{DocumentID: doc.ID, RiskRef: "RISK-042"}
	require.NoError(t, risk.Create(db))

	return doc
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, documentID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.
		Model(model).
		Where("document_id = ?", documentID).
		Count(&n).
		Error)
	return n
}

func TestDocumentService_HardDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the document and every dependent row", func(t *testing.T) {
		svc, db, backend := newTestService(t)
		doc := seedDocumentGraph(t, svc, db)

		got, err := svc.HardDelete(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Title, got.Title)

		_, err = svc.Get(ctx, doc.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Zero(t, countRows(t, db, &models.ReviewTask{}, doc.ID))
		assert.Zero(t, countRows(t, db, &models.Acknowledgment{}, doc.ID))
		assert.Zero(t, countRows(t, db, &models.DocumentControl{}, doc.ID))
		assert.Zero(t, countRows(t, db, &models.DocumentRisk{}, doc.ID))
		assert.Zero(t, countRows(t, db, &models.DocumentVersionHistory{}, doc.ID))

		svc.notifier.Wait()
		ops := map[string]bool{}
		for _, e := range backend.Events() {
			ops[e.Operation] = true
		}
		assert.True(t, ops["hard-delete"])
	})

	t.Run("unknown document is ErrNotFound", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.HardDelete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("a failing step rolls the whole cascade back", func(t *testing.T) {
		svc, db, _ := newTestService(t)
		doc := seedDocumentGraph(t, svc, db)

		// Break the risk-link step; everything deleted before it must be
		// restored.
		require.NoError(t, db.Migrator().DropTable(&models.DocumentRisk{}))

		_, err := svc.HardDelete(ctx, doc.ID)
		require.Error(t, err)

		got, err := svc.Get(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Title, got.Title)

		assert.EqualValues(t, 1, countRows(t, db, &models.ReviewTask{}, doc.ID))
		assert.EqualValues(t, 1, countRows(t, db, &models.Acknowledgment{}, doc.ID))
		assert.EqualValues(t, 1, countRows(t, db, &models.DocumentControl{}, doc.ID))
	})

	t.Run("an exhausted deadline maps to ErrDeleteTimeout", func(t *testing.T) {
		svc, db, _ := newTestService(t)
		doc := seedDocumentGraph(t, svc, db)

		svc.hardDeleteTimeout = time.Nanosecond

		_, err := svc.HardDelete(ctx, doc.ID)
		assert.ErrorIs(t, err, ErrDeleteTimeout)

		// Nothing was deleted.
		svc.hardDeleteTimeout = DefaultHardDeleteTimeout
		_, err = svc.Get(ctx, doc.ID)
		assert.NoError(t, err)
	})
}
