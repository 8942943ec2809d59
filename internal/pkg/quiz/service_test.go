package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

type fakeRepo struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
	results map[string]models.QuizResult
	// hideExisting simulates a concurrent insert that the fast path missed
	hideExisting bool
}

func newFakeRepo(quizzes ...*models.Quiz) *fakeRepo {
	r := &fakeRepo{quizzes: map[string]*models.Quiz{}, results: map[string]models.QuizResult{}}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *fakeRepo) FindQuizWithQuestions(ctx context.Context, quizID string) (*models.Quiz, error) {
	q, ok := r.quizzes[quizID]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

func (r *fakeRepo) FindResult(ctx context.Context, studentID, quizID string) (*models.QuizResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[studentID+"/"+quizID]
	if !ok || r.hideExisting {
		return nil, ErrResultNotFound
	}
	return &res, nil
}

func (r *fakeRepo) CreateResultIfNotExists(ctx context.Context, result *models.QuizResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := result.StudentID + "/" + result.QuizID
	if _, ok := r.results[key]; ok {
		return false, nil
	}
	result.ID = "result-" + key
	r.results[key] = *result
	return true, nil
}

func TestSubmitStoresGradedResult(t *testing.T) {
	repo := newFakeRepo(fourQuestionQuiz(70))
	svc := NewService(repo)
	fixed := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	res, err := svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 1, 3))
	require.NoError(t, err)

	assert.Equal(t, 75.0, res.ScorePercent)
	assert.True(t, res.Passed)
	assert.Equal(t, fixed, res.CompletedAt)
	assert.Len(t, repo.results, 1)
}

func TestSubmitSingleAttempt(t *testing.T) {
	repo := newFakeRepo(fourQuestionQuiz(70))
	svc := NewService(repo)

	first, err := svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 1, 3))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 0, 3))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	stored := repo.results["S1/q1"]
	assert.Equal(t, first.ScorePercent, stored.ScorePercent)
	assert.Equal(t, 75.0, stored.ScorePercent)

	// another student is unaffected
	_, err = svc.Submit(context.Background(), "S2", "q1", answers(1, 2, 0, 3))
	assert.NoError(t, err)
}

func TestSubmitRaceIsCaughtByStore(t *testing.T) {
	repo := newFakeRepo(fourQuestionQuiz(70))
	svc := NewService(repo)

	_, err := svc.Submit(context.Background(), "S1", "q1", answers(1))
	require.NoError(t, err)

	repo.hideExisting = true
	_, err = svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 0, 3))
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitConcurrentAttempts(t *testing.T) {
	repo := newFakeRepo(fourQuestionQuiz(70))
	svc := NewService(repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, dup := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 0, 3))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrAlreadySubmitted):
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 19, dup)
}

func TestSubmitErrors(t *testing.T) {
	svc := NewService(newFakeRepo(fourQuestionQuiz(70)))

	_, err := svc.Submit(context.Background(), "S1", "missing", nil)
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, err = svc.Submit(context.Background(), "", "q1", nil)
	assert.ErrorIs(t, err, ErrStudentIDRequired)

	_, err = svc.Submit(context.Background(), "S1", "q1", []AnswerInput{{QuestionIndex: 9}})
	assert.ErrorIs(t, err, ErrAnswerOutOfRange)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// rejected submissions do not consume the attempt
	_, err = svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 0, 3))
	assert.NoError(t, err)
}

func TestGetResult(t *testing.T) {
	svc := NewService(newFakeRepo(fourQuestionQuiz(70)))

	_, err := svc.GetResult(context.Background(), "S1", "q1")
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = svc.Submit(context.Background(), "S1", "q1", answers(1, 2, 0, 3))
	require.NoError(t, err)

	res, err := svc.GetResult(context.Background(), "S1", "q1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.ScorePercent)
}
