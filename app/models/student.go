package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ROLE_STUDENT    = "student"
	ROLE_INSTRUCTOR = "instructor"
	ROLE_ADMIN      = "admin"
)

// Student is a learner who buys courses, events and sub-trainings.
type Student struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email     string    `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	Mobile    string    `gorm:"type:varchar(20)" json:"mobile" validate:"omitempty,max=20"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

func (s *Student) Validate() error {
	return validator.New().Struct(s)
}

// ensureID keeps a caller supplied id and generates a UUID otherwise.
func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
