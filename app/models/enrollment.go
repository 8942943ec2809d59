package models

import (
	"time"

	"gorm.io/gorm"
)

// Purchasable item types as stored on orders and enrollments.
const (
	ITEM_TYPE_COURSE       = "COURSE"
	ITEM_TYPE_EVENT        = "EVENT"
	ITEM_TYPE_SUB_TRAINING = "SUB_TRAINING"
)

// Enrollment is a student's record of a purchased item. For events it is also
// the event's list of enrolled students.
type Enrollment struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID         string    `gorm:"type:char(36);not null;index:ux_enrollments_student_item,unique,priority:1" json:"student_id"`
	ItemType          string    `gorm:"type:varchar(20);not null;index:ux_enrollments_student_item,unique,priority:2;index:idx_enrollments_item,priority:1" json:"item_type"`
	ItemID            string    `gorm:"type:char(36);not null;index:ux_enrollments_student_item,unique,priority:3;index:idx_enrollments_item,priority:2" json:"item_id"`
	MerchantRefNumber string    `gorm:"type:varchar(191);not null" json:"merchant_ref_number"`
	EnrolledAt        time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	e.ID = ensureID(e.ID)
	return nil
}
