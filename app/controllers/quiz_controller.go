package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/quiz"
	"github.com/ManuelReschke/LearnFox/internal/pkg/usercontext"
)

type QuizService interface {
	Submit(ctx context.Context, studentID, quizID string, answers []quiz.AnswerInput) (*models.QuizResult, error)
	GetResult(ctx context.Context, studentID, quizID string) (*models.QuizResult, error)
}

type QuizController struct {
	service QuizService
}

func NewQuizController(service QuizService) *QuizController {
	return &QuizController{service: service}
}

type submitQuizRequest struct {
	Answers []quiz.AnswerInput `json:"answers" validate:"required,dive"`
}

// HandleSubmit grades the student's single attempt at a quiz
func (qc *QuizController) HandleSubmit(c *fiber.Ctx) error {
	var req submitQuizRequest
	if err := parseAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := qc.service.Submit(c.UserContext(), usercontext.GetStudentID(c), c.Params("id"), req.Answers)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (qc *QuizController) HandleGetResult(c *fiber.Ctx) error {
	result, err := qc.service.GetResult(c.UserContext(), usercontext.GetStudentID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
