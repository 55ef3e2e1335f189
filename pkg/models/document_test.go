package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Create(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		db := setupTest(t)

		doc := Document{
			Title:           "Information Security Policy",
			DocumentType:    DocumentTypePolicy,
			StorageLocation: StorageLocationSharePoint,
		}
		require.NoError(t, doc.Create(db))

		assert.NotEqual(t, uuid.Nil, doc.ID)

		got := Document{ID: doc.ID}
		require.NoError(t, got.Get(db))
		assert.Equal(t, DocumentStatusDraft, got.Status)
		assert.Equal(t, "1.0", got.Version)
	})

	t.Run("keeps a caller-supplied ID", func(t *testing.T) {
		db := setupTest(t)

		id := uuid.New()
		doc := Document{
			ID:              id,
			Title:           "Incident Response Procedure",
			DocumentType:    DocumentTypeProcedure,
			StorageLocation: StorageLocationSharePoint,
		}
		require.NoError(t, doc.Create(db))
		assert.Equal(t, id, doc.ID)
	})
}

func TestDocument_Validate(t *testing.T) {
	valid := func() Document {
		return Document{
			Title:           "Access Control Policy",
			DocumentType:    DocumentTypePolicy,
			Status:          DocumentStatusDraft,
			StorageLocation: StorageLocationSharePoint,
		}
	}

	t.Run("accepts a valid document", func(t *testing.T) {
		doc := valid()
		assert.NoError(t, doc.Validate())
	})

	t.Run("rejects an unknown document type", func(t *testing.T) {
		doc := valid()
		doc.DocumentType = "MEMO"
		assert.Error(t, doc.Validate())
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		doc := valid()
		doc.Status = "ARCHIVED"
		assert.Error(t, doc.Validate())
	})

	t.Run("rejects mixed provider identifiers", func(t *testing.T) {
		doc := valid()
		siteID := "site-1"
		pageID := "12345"
		doc.SharePointSiteID = &siteID
		doc.ConfluencePageID = &pageID
		assert.Error(t, doc.Validate())
	})

	t.Run("rejects identifiers that contradict the storage location", func(t *testing.T) {
		doc := valid()
		doc.StorageLocation = StorageLocationConfluence
		siteID := "site-1"
		doc.SharePointSiteID = &siteID
		assert.Error(t, doc.Validate())
	})

	t.Run("accepts identifiers matching the storage location", func(t *testing.T) {
		doc := valid()
		doc.StorageLocation = StorageLocationConfluence
		spaceKey := "COMP"
		pageID := "12345"
		doc.ConfluenceSpaceKey = &spaceKey
		doc.ConfluencePageID = &pageID
		assert.NoError(t, doc.Validate())
	})
}

func TestDocument_ComputeReviewFlags(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		status       string
		nextReview   *time.Time
		wantOverdue  bool
		wantUpcoming bool
	}{
		{
			name:        "overdue approved document",
			status:      DocumentStatusApproved,
			nextReview:  timePtr(now.Add(-24 * time.Hour)),
			wantOverdue: true,
		},
		{
			name:         "upcoming review inside the window",
			status:       DocumentStatusApproved,
			nextReview:   timePtr(now.Add(10 * 24 * time.Hour)),
			wantUpcoming: true,
		},
		{
			name:       "review beyond the window",
			status:     DocumentStatusApproved,
			nextReview: timePtr(now.Add(60 * 24 * time.Hour)),
		},
		{
			name:        "in-review documents carry flags",
			status:      DocumentStatusInReview,
			nextReview:  timePtr(now.Add(-time.Hour)),
			wantOverdue: true,
		},
		{
			name:       "draft documents never carry flags",
			status:     DocumentStatusDraft,
			nextReview: timePtr(now.Add(-24 * time.Hour)),
		},
		{
			name:       "superseded documents never carry flags",
			status:     DocumentStatusSuperseded,
			nextReview: timePtr(now.Add(-24 * time.Hour)),
		},
		{
			name:   "no next review date",
			status: DocumentStatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{
				Status:         tt.status,
				NextReviewDate: tt.nextReview,
			}
			doc.ComputeReviewFlags(now)
			assert.Equal(t, tt.wantOverdue, doc.IsOverdueReview, "overdue")
			assert.Equal(t, tt.wantUpcoming, doc.IsUpcomingReview, "upcoming")
		})
	}
}

func TestFindDocuments(t *testing.T) {
	db := setupTest(t)

	owner := User{EmailAddress: "ciso@example.com"}
	require.NoError(t, owner.FirstOrCreate(db))

	docs := []Document{
		{
			Title:           "Information Security Policy",
			DocumentType:    DocumentTypePolicy,
			Status:          DocumentStatusApproved,
			StorageLocation: StorageLocationSharePoint,
			OwnerID:         &owner.ID,
		},
		{
			Title:           "Backup Procedure",
			DocumentType:    DocumentTypeProcedure,
			Status:          DocumentStatusDraft,
			StorageLocation: StorageLocationSharePoint,
		},
	}
	for i := range docs {
		require.NoError(t, docs[i].Create(db))
	}

	t.Run("filters by status", func(t *testing.T) {
		got, err := FindDocuments(db, DocumentFilter{Status: DocumentStatusApproved})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Information Security Policy", got[0].Title)
	})

	t.Run("filters by type", func(t *testing.T) {
		got, err := FindDocuments(db, DocumentFilter{DocumentType: DocumentTypeProcedure})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Backup Procedure", got[0].Title)
	})

	t.Run("filters by owner email", func(t *testing.T) {
		got, err := FindDocuments(db, DocumentFilter{OwnerEmail: "ciso@example.com"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].Owner)
		assert.Equal(t, "ciso@example.com", got[0].Owner.EmailAddress)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		got, err := FindDocuments(db, DocumentFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
