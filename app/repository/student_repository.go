package repository

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository instance
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(id string) (*models.Student, error) {
	var s models.Student
	if err := r.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepository) GetByEmail(email string) (*models.Student, error) {
	var s models.Student
	if err := r.db.Where("email = ?", email).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
