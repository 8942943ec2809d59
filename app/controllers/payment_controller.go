package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LearnFox/internal/pkg/payment"
	"github.com/ManuelReschke/LearnFox/internal/pkg/usercontext"
)

const callbackTimeout = 15 * time.Second

// PaymentService is the part of the payment service used over HTTP
type PaymentService interface {
	Checkout(ctx context.Context, studentID string, in payment.CheckoutInput) (*payment.CheckoutResult, error)
	ProcessCallback(ctx context.Context, body []byte) (payment.Outcome, error)
}

type PaymentController struct {
	service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// HandleCheckout starts a gateway payment for the logged in student
func (pc *PaymentController) HandleCheckout(c *fiber.Ctx) error {
	studentID := usercontext.GetStudentID(c)

	var in payment.CheckoutInput
	if err := parseAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}

	res, err := pc.service.Checkout(c.UserContext(), studentID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleFawryCallback receives the gateway's server-to-server notification.
// Any non-2xx answer makes the gateway deliver the notification again.
func (pc *PaymentController) HandleFawryCallback(c *fiber.Ctx) error {
	// fasthttp reuses the request buffer after the handler returns
	body := append([]byte(nil), c.Body()...)

	ctx, cancel := context.WithTimeout(c.UserContext(), callbackTimeout)
	defer cancel()

	outcome, err := pc.service.ProcessCallback(ctx, body)
	if err != nil {
		log.Warnf("[Webhook] Fawry callback rejected from %s: %v", c.IP(), err)
		return respondError(c, err)
	}

	if outcome == payment.OutcomeDuplicate {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	return c.JSON(fiber.Map{"ok": true, "outcome": outcome})
}
