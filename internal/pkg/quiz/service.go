package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/metrics"
)

var (
	ErrQuizNotFound      = apperr.NotFound("quiz_not_found", "quiz not found")
	ErrResultNotFound    = apperr.NotFound("quiz_result_not_found", "no result for this quiz")
	ErrAlreadySubmitted  = apperr.Conflict("quiz_already_submitted", "quiz already submitted")
	ErrStudentIDRequired = apperr.Validation("student_required", "student id is required")
)

// Service grades quiz submissions and stores one result per student and quiz.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a quiz service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a quiz service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Submit grades and stores the student's only attempt at a quiz.
func (s *Service) Submit(ctx context.Context, studentID, quizID string, answers []AnswerInput) (*models.QuizResult, error) {
	if studentID == "" {
		return nil, ErrStudentIDRequired
	}

	quiz, err := s.repo.FindQuizWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindResult(ctx, studentID, quizID); err == nil {
		metrics.QuizSubmissions.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadySubmitted
	} else if !errors.Is(err, ErrResultNotFound) {
		return nil, fmt.Errorf("check existing result: %w", err)
	}

	outcome, err := Grade(quiz, answers)
	if err != nil {
		metrics.QuizSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	result := &models.QuizResult{
		StudentID:    studentID,
		QuizID:       quizID,
		Answers:      outcome.Answers,
		CorrectCount: outcome.CorrectCount,
		ScorePercent: outcome.ScorePercent,
		Passed:       outcome.Passed,
		CompletedAt:  s.now().UTC(),
	}

	created, err := s.repo.CreateResultIfNotExists(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("store quiz result: %w", err)
	}
	if !created {
		// lost the race against a concurrent submission
		metrics.QuizSubmissions.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadySubmitted
	}

	status := "failed"
	if result.Passed {
		status = "passed"
	}
	metrics.QuizSubmissions.WithLabelValues(status).Inc()
	log.Infof("[Quiz] Student %s scored %.2f%% on quiz %s (passed=%t)", studentID, result.ScorePercent, quizID, result.Passed)
	return result, nil
}

// GetResult returns the stored result of a student's attempt.
func (s *Service) GetResult(ctx context.Context, studentID, quizID string) (*models.QuizResult, error) {
	return s.repo.FindResult(ctx, studentID, quizID)
}
