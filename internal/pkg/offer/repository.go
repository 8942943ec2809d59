package offer

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
)

// Repository provides DB operations used by the offer service.
type Repository interface {
	FindSubTraining(ctx context.Context, id string) (*models.SubTraining, error)
	SaveOffer(ctx context.Context, subTrainingID string, offer models.Offer) error
	// ClearExpired removes every offer that ended before now and returns how
	// many sub-trainings were changed.
	ClearExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an offer repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

var offerColumns = []string{"has_offer", "offer_price", "offer_start_date", "offer_end_date", "discount_percentage"}

func (r *gormRepository) FindSubTraining(ctx context.Context, id string) (*models.SubTraining, error) {
	var st models.SubTraining
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubTrainingNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *gormRepository) SaveOffer(ctx context.Context, subTrainingID string, offer models.Offer) error {
	return r.db.WithContext(ctx).
		Model(&models.SubTraining{}).
		Where("id = ?", subTrainingID).
		Select(offerColumns).
		Updates(&models.SubTraining{Offer: offer}).Error
}

func (r *gormRepository) ClearExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.SubTraining{}).
		Where("has_offer = ? AND offer_end_date < ?", true, now).
		Updates(map[string]interface{}{
			"has_offer":           false,
			"offer_price":         nil,
			"offer_start_date":    nil,
			"offer_end_date":      nil,
			"discount_percentage": nil,
		})
	return tx.RowsAffected, tx.Error
}
