package controllers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/curriculum"
	"github.com/ManuelReschke/LearnFox/internal/pkg/objectstore"
)

var errMissingVideoFile = apperr.Validation("missing_video_file", "a video file is required")

type CurriculumService interface {
	UploadVideo(ctx context.Context, blockID string, up curriculum.Upload) (*models.Video, *models.CurriculumBlock, error)
}

type CurriculumController struct {
	service CurriculumService
}

func NewCurriculumController(service CurriculumService) *CurriculumController {
	return &CurriculumController{service: service}
}

// HandleUploadVideo accepts a multipart form with title, duration and file
func (cc *CurriculumController) HandleUploadVideo(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	duration := strings.TrimSpace(c.FormValue("duration"))
	if title == "" {
		return respondError(c, apperr.WithMessage(errInvalidRequest, "title is required"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondError(c, errMissingVideoFile)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, apperr.Wrap(errMissingVideoFile, err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = objectstore.ContentTypeFor(filepath.Ext(fileHeader.Filename))
	}

	video, block, err := cc.service.UploadVideo(c.UserContext(), c.Params("id"), curriculum.Upload{
		Title:       title,
		Duration:    duration,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Infof("[Curriculum] Video %s added to block %s, total %s", video.ID, block.ID, block.TotalDuration)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"video":          video,
		"total_duration": block.TotalDuration,
	})
}
