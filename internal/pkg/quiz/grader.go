package quiz

import (
	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

var (
	ErrAnswerOutOfRange = apperr.Validation("answer_out_of_range", "question index out of range")
	ErrOptionOutOfRange = apperr.Validation("option_out_of_range", "selected option out of range")
	ErrDuplicateAnswer  = apperr.Validation("duplicate_answer", "question answered more than once")
)

// AnswerInput is one submitted answer.
type AnswerInput struct {
	QuestionIndex       int `json:"questionIndex" validate:"min=0"`
	SelectedOptionIndex int `json:"selectedOptionIndex" validate:"min=0"`
}

// Outcome is the graded form of a submission.
type Outcome struct {
	Answers      []models.GradedAnswer
	CorrectCount int
	ScorePercent float64
	Passed       bool
}

// Grade scores answers against the quiz. The score is relative to all
// questions of the quiz, so unanswered questions count as wrong.
func Grade(quiz *models.Quiz, answers []AnswerInput) (Outcome, error) {
	total := len(quiz.Questions)
	seen := make(map[int]struct{}, len(answers))
	graded := make([]models.GradedAnswer, 0, len(answers))
	correct := 0

	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= total {
			return Outcome{}, apperr.WithMessage(ErrAnswerOutOfRange, "question index %d out of range [0,%d)", a.QuestionIndex, total)
		}
		if _, dup := seen[a.QuestionIndex]; dup {
			return Outcome{}, apperr.WithMessage(ErrDuplicateAnswer, "question %d answered more than once", a.QuestionIndex)
		}
		seen[a.QuestionIndex] = struct{}{}

		q := quiz.Questions[a.QuestionIndex]
		if a.SelectedOptionIndex < 0 || a.SelectedOptionIndex >= len(q.Options) {
			return Outcome{}, apperr.WithMessage(ErrOptionOutOfRange, "option %d out of range for question %d", a.SelectedOptionIndex, a.QuestionIndex)
		}

		isCorrect := a.SelectedOptionIndex == q.CorrectOptionIndex
		if isCorrect {
			correct++
		}
		graded = append(graded, models.GradedAnswer{
			QuestionIndex:       a.QuestionIndex,
			SelectedOptionIndex: a.SelectedOptionIndex,
			IsCorrect:           isCorrect,
		})
	}

	score := 0.0
	if total > 0 {
		score = 100 * float64(correct) / float64(total)
	}

	return Outcome{
		Answers:      graded,
		CorrectCount: correct,
		ScorePercent: score,
		Passed:       score >= float64(quiz.PassingScorePercent),
	}, nil
}
