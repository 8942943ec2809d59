package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Offer is a time-bounded discount. The zero value means "no offer" and maps
// every column to NULL/false.
type Offer struct {
	HasOffer           bool                `gorm:"not null;default:false;index" json:"has_offer"`
	OfferPrice         decimal.NullDecimal `gorm:"type:decimal(12,2);default:null" json:"offer_price"`
	OfferStartDate     *time.Time          `gorm:"type:timestamp;default:null" json:"offer_start_date,omitempty"`
	OfferEndDate       *time.Time          `gorm:"type:timestamp;default:null;index" json:"offer_end_date,omitempty"`
	DiscountPercentage decimal.NullDecimal `gorm:"type:decimal(5,2);default:null" json:"discount_percentage"`
}

// ActiveAt reports whether the offer applies at t (both bounds inclusive).
func (o Offer) ActiveAt(t time.Time) bool {
	if !o.HasOffer || !o.OfferPrice.Valid || o.OfferStartDate == nil || o.OfferEndDate == nil {
		return false
	}
	return !t.Before(*o.OfferStartDate) && !t.After(*o.OfferEndDate)
}

// SubTraining is a seat-limited training program. AvailableSeats never drops
// below zero; the reconciler decrements it with a conditional update.
type SubTraining struct {
	ID                       string          `gorm:"type:char(36);primaryKey" json:"id"`
	Title                    string          `gorm:"type:varchar(255);not null" json:"title"`
	Description              string          `gorm:"type:text" json:"description"`
	OriginalPrice            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"original_price"`
	AvailableSeats           int             `gorm:"not null;default:0;check:chk_sub_trainings_seats,available_seats >= 0" json:"available_seats"`
	NumberOfStudentsEnrolled int             `gorm:"not null;default:0" json:"number_of_students_enrolled"`
	Offer                    Offer           `gorm:"embedded" json:"offer"`
	CreatedAt                time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *SubTraining) BeforeCreate(tx *gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

// EffectivePrice returns the offer price while the offer is active and the
// original price otherwise.
func (s *SubTraining) EffectivePrice(now time.Time) decimal.Decimal {
	if s.Offer.ActiveAt(now) {
		return s.Offer.OfferPrice.Decimal
	}
	return s.OriginalPrice
}
