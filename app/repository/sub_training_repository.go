package repository

import (
	"time"

	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

type subTrainingRepository struct {
	db *gorm.DB
}

// NewSubTrainingRepository creates a new sub-training repository instance
func NewSubTrainingRepository(db *gorm.DB) SubTrainingRepository {
	return &subTrainingRepository{db: db}
}

func (r *subTrainingRepository) GetByID(id string) (*models.SubTraining, error) {
	var st models.SubTraining
	if err := r.db.Where("id = ?", id).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *subTrainingRepository) List(offset, limit int) ([]models.SubTraining, error) {
	var list []models.SubTraining
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// ListWithActiveOffer returns sub-trainings whose offer window contains now
func (r *subTrainingRepository) ListWithActiveOffer(offset, limit int) ([]models.SubTraining, error) {
	var list []models.SubTraining
	now := time.Now().UTC()
	err := r.db.
		Where("has_offer = ? AND offer_start_date <= ? AND offer_end_date >= ?", true, now, now).
		Order("offer_end_date ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
