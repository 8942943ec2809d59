package repository

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

// courseRepository implements the CourseRepository interface
type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository instance
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// GetByID retrieves a course without its curriculum
func (r *courseRepository) GetByID(id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// GetWithCurriculum retrieves a course with blocks, videos and quizzes in
// display order. Quiz questions are not loaded since they carry the answers.
func (r *courseRepository) GetWithCurriculum(id string) (*models.Course, error) {
	var course models.Course
	err := r.db.
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Blocks.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Blocks.Quizzes").
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List retrieves a paginated list of courses
func (r *courseRepository) List(offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// Count returns the total number of courses
func (r *courseRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Count(&count).Error
	return count, err
}
