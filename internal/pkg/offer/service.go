package offer

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

var ErrSubTrainingNotFound = apperr.NotFound("sub_training_not_found", "sub-training not found")

// Service sets and clears discount offers on sub-trainings.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ApplyOffer validates and stores an offer, replacing any existing one.
func (s *Service) ApplyOffer(ctx context.Context, subTrainingID string, in Input) (*models.SubTraining, error) {
	st, err := s.repo.FindSubTraining(ctx, subTrainingID)
	if err != nil {
		return nil, err
	}

	offer, err := Apply(st.OriginalPrice, in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveOffer(ctx, st.ID, offer); err != nil {
		return nil, fmt.Errorf("save offer: %w", err)
	}

	st.Offer = offer
	log.Infof("[Offer] Sub-training %s: %s until %s (%s%%)", st.ID, offer.OfferPrice.Decimal.StringFixed(2), offer.OfferEndDate.Format(time.RFC3339), offer.DiscountPercentage.Decimal.StringFixed(2))
	return st, nil
}

// RemoveOffer clears the offer of a sub-training. Removing a missing offer is
// not an error.
func (s *Service) RemoveOffer(ctx context.Context, subTrainingID string) (*models.SubTraining, error) {
	st, err := s.repo.FindSubTraining(ctx, subTrainingID)
	if err != nil {
		return nil, err
	}

	offer := Remove()
	if err := s.repo.SaveOffer(ctx, st.ID, offer); err != nil {
		return nil, fmt.Errorf("remove offer: %w", err)
	}

	st.Offer = offer
	log.Infof("[Offer] Sub-training %s: offer removed", st.ID)
	return st, nil
}

// ClearExpired removes offers whose end date has passed.
func (s *Service) ClearExpired(ctx context.Context) (int64, error) {
	return s.repo.ClearExpired(ctx, s.now().UTC())
}
