package curriculum

import (
	"context"
	"errors"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBlockNotFound = apperr.NotFound("block_not_found", "curriculum block not found")

// Repository provides DB operations used by the curriculum service.
type Repository interface {
	// WithinTransaction runs fn against a repository bound to one transaction.
	WithinTransaction(ctx context.Context, fn func(tx Repository) error) error
	// LockBlock loads a block and holds a row lock until the transaction ends.
	LockBlock(ctx context.Context, blockID string) (*models.CurriculumBlock, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateBlockDuration(ctx context.Context, blockID, totalDuration string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a curriculum repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) LockBlock(ctx context.Context, blockID string) (*models.CurriculumBlock, error) {
	var block models.CurriculumBlock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", blockID).
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return &block, nil
}

func (r *gormRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *gormRepository) UpdateBlockDuration(ctx context.Context, blockID, totalDuration string) error {
	return r.db.WithContext(ctx).
		Model(&models.CurriculumBlock{}).
		Where("id = ?", blockID).
		Update("total_duration", totalDuration).Error
}
