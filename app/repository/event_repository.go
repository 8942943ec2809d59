package repository

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetByID(id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns upcoming events first
func (r *eventRepository) List(offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// CountEnrolled counts the students enrolled in an event
func (r *eventRepository) CountEnrolled(eventID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).
		Where("item_type = ? AND item_id = ?", models.ITEM_TYPE_EVENT, eventID).
		Count(&count).Error
	return count, err
}
