package repository

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository instance
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// GetByStudentID returns a student's enrollments, newest first
func (r *enrollmentRepository) GetByStudentID(studentID string, offset, limit int) ([]models.Enrollment, error) {
	var list []models.Enrollment
	err := r.db.Where("student_id = ?", studentID).
		Order("enrolled_at DESC").Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepository) CountByStudentID(studentID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).Where("student_id = ?", studentID).Count(&count).Error
	return count, err
}

// Exists reports whether the student already owns the item
func (r *enrollmentRepository) Exists(studentID, itemType, itemID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).
		Where("student_id = ? AND item_type = ? AND item_id = ?", studentID, itemType, itemID).
		Count(&count).Error
	return count > 0, err
}
