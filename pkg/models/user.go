package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// User identifies an actor for audit stamping and document ownership.
// Identity resolution happens upstream; this table only records who touched
// what.
type User struct {
	gorm.Model

	// EmailAddress is the unique email address of the user.
	EmailAddress string `gorm:"uniqueIndex;not null;type:citext" json:"email"`

	// ExternalID is the opaque identity-provider subject, when known.
	ExternalID string `gorm:"type:varchar(255)" json:"-"`
}

// TableName specifies the table name.
func (User) TableName() string {
	return "users"
}

// FirstOrCreate finds the user by email address or creates the row.
func (u *User) FirstOrCreate(db *gorm.DB) error {
	if err := validation.ValidateStruct(u,
		validation.Field(&u.EmailAddress, validation.Required),
	); err != nil {
		return err
	}

	return db.
		Where(User{EmailAddress: u.EmailAddress}).
		FirstOrCreate(&u).
		Error
}

// Get retrieves the user by email address.
func (u *User) Get(db *gorm.DB) error {
	if err := validation.ValidateStruct(u,
		validation.Field(&u.EmailAddress, validation.Required),
	); err != nil {
		return err
	}

	return db.
		Where(User{EmailAddress: u.EmailAddress}).
		First(&u).
		Error
}
