package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event is a one-off session. Its enrolled students are the Enrollment rows
// with item type EVENT.
type Event struct {
	ID          string          `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	StartsAt    *time.Time      `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	e.ID = ensureID(e.ID)
	return nil
}
