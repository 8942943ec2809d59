package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var validate = validator.New()

var timeNow = time.Now

// badRequestCodes are validation failures caused by a body that could not be
// read at all, as opposed to a readable body with invalid content.
var badRequestCodes = map[string]bool{
	"invalid_request_body": true,
	"unreadable_callback":  true,
}

var (
	errInvalidBody    = apperr.Validation("invalid_request_body", "request body could not be parsed")
	errInvalidRequest = apperr.Validation("invalid_request", "request failed validation")
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict, apperr.KindCapacityExceeded:
		return fiber.StatusConflict
	case apperr.KindValidation:
		if badRequestCodes[apperr.CodeOf(err)] {
			return fiber.StatusBadRequest
		}
		return fiber.StatusUnprocessableEntity
	case apperr.KindSignatureMismatch:
		return fiber.StatusUnauthorized
	case apperr.KindUpstream:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// respondError writes the JSON error body for err. Internal errors are logged
// and never leak their message.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(status).JSON(fiber.Map{"error": "not_found", "message": "Resource not found"})
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(fiber.Map{"error": appErr.Code, "message": appErr.Message})
	}
	return c.Status(status).JSON(fiber.Map{"error": "error", "message": err.Error()})
}

// parseAndValidate decodes the JSON body into out and runs struct validation.
func parseAndValidate(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Wrap(errInvalidBody, err)
	}
	if err := validate.Struct(out); err != nil {
		return apperr.WithMessage(errInvalidRequest, "%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed on "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// pagination reads ?page and ?per_page and returns offset and limit
func pagination(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.Query("per_page", strconv.Itoa(defaultPageSize)))
	if err != nil || perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	return (page - 1) * perPage, perPage
}
