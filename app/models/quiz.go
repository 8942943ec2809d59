package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz belongs to a curriculum block. Questions are ordered by Position and a
// question's index in that order is what answers refer to.
type Quiz struct {
	ID                  string     `gorm:"type:char(36);primaryKey" json:"id"`
	BlockID             string     `gorm:"type:char(36);index" json:"block_id"`
	Title               string     `gorm:"type:varchar(255);not null" json:"title"`
	PassingScorePercent int        `gorm:"not null;default:50" json:"passing_score_percent" validate:"min=0,max=100"`
	TimeLimitMinutes    int        `gorm:"not null;default:0" json:"time_limit_minutes" validate:"min=0"`
	Questions           []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	q.ID = ensureID(q.ID)
	return nil
}

type Question struct {
	ID                 string   `gorm:"type:char(36);primaryKey" json:"id"`
	QuizID             string   `gorm:"type:char(36);not null;index:idx_questions_quiz_position,priority:1" json:"quiz_id"`
	Position           int      `gorm:"not null;default:0;index:idx_questions_quiz_position,priority:2" json:"position"`
	Text               string   `gorm:"type:text;not null" json:"text"`
	Options            []string `gorm:"type:json;serializer:json" json:"options" validate:"min=2"`
	CorrectOptionIndex int      `gorm:"not null" json:"-"`
	Explanation        string   `gorm:"type:text" json:"explanation,omitempty"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	q.ID = ensureID(q.ID)
	return nil
}

// GradedAnswer is one scored answer of a QuizResult.
type GradedAnswer struct {
	QuestionIndex       int  `json:"question_index"`
	SelectedOptionIndex int  `json:"selected_option_index"`
	IsCorrect           bool `json:"is_correct"`
}

// QuizResult is the single, immutable attempt of a student at a quiz.
type QuizResult struct {
	ID           string         `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID    string         `gorm:"type:char(36);not null;index:ux_quiz_results_student_quiz,unique,priority:1" json:"student_id"`
	QuizID       string         `gorm:"type:char(36);not null;index:ux_quiz_results_student_quiz,unique,priority:2;index" json:"quiz_id"`
	Answers      []GradedAnswer `gorm:"type:json;serializer:json" json:"answers"`
	CorrectCount int            `gorm:"not null" json:"correct_count"`
	ScorePercent float64        `gorm:"not null" json:"score_percent"`
	Passed       bool           `gorm:"not null" json:"passed"`
	CompletedAt  time.Time      `gorm:"not null" json:"completed_at"`
}

func (r *QuizResult) BeforeCreate(tx *gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}
