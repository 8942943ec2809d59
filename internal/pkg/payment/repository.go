package payment

import (
	"context"
	"errors"

	"github.com/ManuelReschke/LearnFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog answers existence questions about purchasable entities.
type Catalog interface {
	CourseExists(ctx context.Context, id string) (bool, error)
	EventExists(ctx context.Context, id string) (bool, error)
	SubTrainingExists(ctx context.Context, id string) (bool, error)
}

// Repository provides DB operations used by the payment service.
type Repository interface {
	Catalog

	WithinTransaction(ctx context.Context, fn func(tx Repository) error) error

	FindStudent(ctx context.Context, id string) (*models.Student, error)
	FindCourse(ctx context.Context, id string) (*models.Course, error)
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	FindSubTraining(ctx context.Context, id string) (*models.SubTraining, error)
	FindOrderByMerchantRef(ctx context.Context, merchantRef string) (*models.Order, error)

	// CreateOrderIfNotExists inserts the order unless its merchant reference
	// is already taken and reports whether it was inserted.
	CreateOrderIfNotExists(ctx context.Context, order *models.Order) (bool, error)
	// IncrementCourseEnrollment bumps students_enrolled and reports whether
	// the course exists.
	IncrementCourseEnrollment(ctx context.Context, courseID string) (bool, error)
	// ReserveSubTrainingSeat takes one seat if any is left and reports
	// whether a seat was taken.
	ReserveSubTrainingSeat(ctx context.Context, subTrainingID string) (bool, error)
	AddEnrollment(ctx context.Context, enrollment *models.Enrollment) error

	CreateCallbackEvent(ctx context.Context, event *models.PaymentCallbackEvent) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) exists(ctx context.Context, model interface{}, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CourseExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &models.Course{}, id)
}

func (r *gormRepository) EventExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &models.Event{}, id)
}

func (r *gormRepository) SubTrainingExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &models.SubTraining{}, id)
}

func (r *gormRepository) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return &s, nil
}

func (r *gormRepository) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	return &c, nil
}

func (r *gormRepository) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return &e, nil
}

func (r *gormRepository) FindSubTraining(ctx context.Context, id string) (*models.SubTraining, error) {
	var s models.SubTraining
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, notFound(err, ErrSubTrainingNotFound)
	}
	return &s, nil
}

func (r *gormRepository) FindOrderByMerchantRef(ctx context.Context, merchantRef string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).Where("merchant_ref_number = ?", merchantRef).First(&o).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &o, nil
}

func (r *gormRepository) CreateOrderIfNotExists(ctx context.Context, order *models.Order) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "merchant_ref_number"}},
		DoNothing: true,
	}).Create(order)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) IncrementCourseEnrollment(ctx context.Context, courseID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("students_enrolled", gorm.Expr("students_enrolled + ?", 1))
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) ReserveSubTrainingSeat(ctx context.Context, subTrainingID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.SubTraining{}).
		Where("id = ? AND available_seats > 0", subTrainingID).
		UpdateColumns(map[string]interface{}{
			"available_seats":             gorm.Expr("available_seats - ?", 1),
			"number_of_students_enrolled": gorm.Expr("number_of_students_enrolled + ?", 1),
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *gormRepository) AddEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "item_type"},
			{Name: "item_id"},
		},
		DoNothing: true,
	}).Create(enrollment).Error
}

func (r *gormRepository) CreateCallbackEvent(ctx context.Context, event *models.PaymentCallbackEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
