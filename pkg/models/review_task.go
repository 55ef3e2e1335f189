package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewTask is a scheduled review of a document assigned to a user.
type ReviewTask struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DocumentID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_tasks_document" json:"documentId"`
	Document   *Document `json:"-"`

	AssigneeID *uint `json:"assigneeId,omitempty"`
	Assignee   *User `json:"assignee,omitempty"`

	Status  string     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	DueDate *time.Time `json:"dueDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review task status values.
const (
	ReviewTaskStatusOpen      = "OPEN"
	ReviewTaskStatusCompleted = "COMPLETED"
	ReviewTaskStatusCancelled = "CANCELLED"
)

// TableName specifies the table name.
func (ReviewTask) TableName() string {
	return "review_tasks"
}

// Create creates the review task.
func (rt *ReviewTask) Create(db *gorm.DB) error {
	if rt.Status == "" {
		rt.Status = ReviewTaskStatusOpen
	}
	return db.Create(&rt).Error
}

// CountReviewTasks returns the number of review tasks referencing a
// document.
func CountReviewTasks(db *gorm.DB, documentID uuid.UUID) (int64, error) {
	var n int64
	err := db.
		Model(&ReviewTask{}).
		Where("document_id = ?", documentID).
		Count(&n).
		Error
	return n, err
}
