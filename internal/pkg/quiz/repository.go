package quiz

import (
	"context"
	"errors"

	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the quiz service.
type Repository interface {
	FindQuizWithQuestions(ctx context.Context, quizID string) (*models.Quiz, error)
	FindResult(ctx context.Context, studentID, quizID string) (*models.QuizResult, error)
	// CreateResultIfNotExists inserts the result unless one already exists for
	// the (student, quiz) pair and reports whether it was inserted.
	CreateResultIfNotExists(ctx context.Context, result *models.QuizResult) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a quiz repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindQuizWithQuestions(ctx context.Context, quizID string) (*models.Quiz, error) {
	var q models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", quizID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *gormRepository) FindResult(ctx context.Context, studentID, quizID string) (*models.QuizResult, error) {
	var res models.QuizResult
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *gormRepository) CreateResultIfNotExists(ctx context.Context, result *models.QuizResult) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "quiz_id"},
		},
		DoNothing: true,
	}).Create(result)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
