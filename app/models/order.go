package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrOrderImmutable = errors.New("orders are immutable")

const (
	ORDER_STATUS_PAID     = "PAID"
	ORDER_STATUS_NEW      = "NEW"
	ORDER_STATUS_UNPAID   = "UNPAID"
	ORDER_STATUS_EXPIRED  = "EXPIRED"
	ORDER_STATUS_REFUNDED = "REFUNDED"
	ORDER_STATUS_CANCELED = "CANCELED"
	ORDER_STATUS_FAILED   = "FAILED"
)

// Order is the append-only snapshot of a processed payment callback. It is
// written once per merchant reference and never updated.
type Order struct {
	ID                string          `gorm:"type:char(36);primaryKey" json:"id"`
	MerchantRefNumber string          `gorm:"type:varchar(191);not null;uniqueIndex:ux_orders_merchant_ref" json:"merchant_ref_number"`
	FawryRefNumber    string          `gorm:"type:varchar(64);index" json:"fawry_ref_number"`
	StudentID         string          `gorm:"type:char(36);not null;index" json:"student_id"`
	ItemType          string          `gorm:"type:varchar(20);not null" json:"item_type"`
	ItemID            string          `gorm:"type:char(36);not null;index" json:"item_id"`
	OrderStatus       string          `gorm:"type:varchar(20);not null" json:"order_status"`
	PaymentMethod     string          `gorm:"type:varchar(32)" json:"payment_method"`
	PaymentAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"payment_amount"`
	OrderAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"order_amount"`
	FawryFees         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fawry_fees"`
	Items             datatypes.JSON  `gorm:"type:json" json:"items"`
	Payload           datatypes.JSON  `gorm:"type:json" json:"-"`
	FailureErrorCode  string          `gorm:"type:varchar(64)" json:"failure_error_code,omitempty"`
	FailureReason     string          `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = ensureID(o.ID)
	return nil
}

// BeforeUpdate rejects every update; orders are immutable.
func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	return ErrOrderImmutable
}
