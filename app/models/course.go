package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course is a purchasable curriculum. StudentsEnrolled only ever grows and is
// changed exclusively by the payment reconciler.
type Course struct {
	ID               string            `gorm:"type:char(36);primaryKey" json:"id"`
	Title            string            `gorm:"type:varchar(255);not null" json:"title"`
	Description      string            `gorm:"type:text" json:"description"`
	Price            decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	StudentsEnrolled int               `gorm:"not null;default:0" json:"students_enrolled"`
	Blocks           []CurriculumBlock `gorm:"foreignKey:CourseID" json:"blocks,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// CurriculumBlock groups the videos and quizzes of a course section.
// TotalDuration is the "mm:ss" sum of all attached videos.
type CurriculumBlock struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	CourseID      string    `gorm:"type:char(36);not null;index" json:"course_id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	TotalDuration string    `gorm:"type:varchar(16);not null;default:'00:00'" json:"total_duration"`
	Videos        []Video   `gorm:"foreignKey:BlockID" json:"videos,omitempty"`
	Quizzes       []Quiz    `gorm:"foreignKey:BlockID" json:"quizzes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *CurriculumBlock) BeforeCreate(tx *gorm.DB) error {
	b.ID = ensureID(b.ID)
	if b.TotalDuration == "" {
		b.TotalDuration = "00:00"
	}
	return nil
}

// Video is a lecture stored in object storage.
type Video struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	BlockID   string    `gorm:"type:char(36);not null;index" json:"block_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	URL       string    `gorm:"type:varchar(1024);not null" json:"url"`
	PublicID  string    `gorm:"type:varchar(512);not null" json:"public_id"`
	Duration  string    `gorm:"type:varchar(16);not null" json:"duration"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	v.ID = ensureID(v.ID)
	return nil
}
