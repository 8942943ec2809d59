package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CALLBACK_OUTCOME_PROCESSED = "processed"
	CALLBACK_OUTCOME_DUPLICATE = "duplicate"
	CALLBACK_OUTCOME_IGNORED   = "ignored"
	CALLBACK_OUTCOME_FAILED    = "failed"
)

// PaymentCallbackEvent is the audit trail of every gateway callback delivery,
// including redeliveries and rejected ones.
type PaymentCallbackEvent struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	MerchantRefNumber string         `gorm:"type:varchar(191);not null;default:'';index" json:"merchant_ref_number"`
	OrderStatus       string         `gorm:"type:varchar(20);not null;default:''" json:"order_status"`
	PayloadHash       string         `gorm:"type:char(64);not null;index" json:"payload_hash"`
	Payload           datatypes.JSON `gorm:"type:json" json:"payload"`
	SignatureValid    bool           `gorm:"default:false;index" json:"signature_valid"`
	Outcome           string         `gorm:"type:varchar(20);not null;default:'';index" json:"outcome"`
	ProcessingError   string         `gorm:"type:text" json:"processing_error"`
	ProcessedAt       *time.Time     `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}
