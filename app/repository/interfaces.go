package repository

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
)

// CourseRepository defines the read operations for courses
type CourseRepository interface {
	GetByID(id string) (*models.Course, error)
	GetWithCurriculum(id string) (*models.Course, error)
	List(offset, limit int) ([]models.Course, error)
	Count() (int64, error)
}

// EventRepository defines the read operations for events
type EventRepository interface {
	GetByID(id string) (*models.Event, error)
	List(offset, limit int) ([]models.Event, error)
	CountEnrolled(eventID string) (int64, error)
}

// SubTrainingRepository defines the read operations for sub-trainings
type SubTrainingRepository interface {
	GetByID(id string) (*models.SubTraining, error)
	List(offset, limit int) ([]models.SubTraining, error)
	ListWithActiveOffer(offset, limit int) ([]models.SubTraining, error)
}

// EnrollmentRepository defines the read operations for enrollments
type EnrollmentRepository interface {
	GetByStudentID(studentID string, offset, limit int) ([]models.Enrollment, error)
	CountByStudentID(studentID string) (int64, error)
	Exists(studentID, itemType, itemID string) (bool, error)
}

// StudentRepository defines the read operations for students
type StudentRepository interface {
	GetByID(id string) (*models.Student, error)
	GetByEmail(email string) (*models.Student, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Course      CourseRepository
	Event       EventRepository
	SubTraining SubTrainingRepository
	Enrollment  EnrollmentRepository
	Student     StudentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Course:      NewCourseRepository(db),
		Event:       NewEventRepository(db),
		SubTraining: NewSubTrainingRepository(db),
		Enrollment:  NewEnrollmentRepository(db),
		Student:     NewStudentRepository(db),
	}
}
