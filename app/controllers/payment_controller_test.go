package controllers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/payment"
)

type fakePaymentService struct {
	checkoutStudent string
	checkoutInput   payment.CheckoutInput
	checkoutErr     error

	callbackBody []byte
	outcome      payment.Outcome
	callbackErr  error
	hadDeadline  bool
}

func (f *fakePaymentService) Checkout(ctx context.Context, studentID string, in payment.CheckoutInput) (*payment.CheckoutResult, error) {
	f.checkoutStudent = studentID
	f.checkoutInput = in
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &payment.CheckoutResult{
		MerchantRefNumber: studentID + "-ref",
		ItemCode:          "course:" + in.ItemID,
		Amount:            decimal.RequireFromString("100"),
		RedirectURL:       "https://fawry.test/pay/1",
		ExpiresAt:         time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakePaymentService) ProcessCallback(ctx context.Context, body []byte) (payment.Outcome, error) {
	f.callbackBody = body
	_, f.hadDeadline = ctx.Deadline()
	return f.outcome, f.callbackErr
}

func newPaymentApp(svc PaymentService) *fiber.App {
	app := fiber.New()
	pc := NewPaymentController(svc)
	app.Post("/checkout", loginAs("S1", models.ROLE_STUDENT), pc.HandleCheckout)
	app.Post("/webhooks/fawry", pc.HandleFawryCallback)
	return app
}

func TestHandleCheckout(t *testing.T) {
	svc := &fakePaymentService{}
	app := newPaymentApp(svc)

	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(`{"itemType":"COURSE","itemId":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := readBody(t, resp.Body)
	assert.Contains(t, body, `"redirectUrl":"https://fawry.test/pay/1"`)
	assert.Contains(t, body, `"merchantRefNumber":"S1-ref"`)
	assert.Equal(t, "S1", svc.checkoutStudent)
	assert.Equal(t, "c1", svc.checkoutInput.ItemID)
}

func TestHandleCheckoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		svcErr error
		status int
	}{
		{"unknown type", `{"itemType":"VIDEO","itemId":"v1"}`, nil, fiber.StatusUnprocessableEntity},
		{"missing id", `{"itemType":"COURSE"}`, nil, fiber.StatusUnprocessableEntity},
		{"broken body", `{"itemType"`, nil, fiber.StatusBadRequest},
		{"missing item", `{"itemType":"COURSE","itemId":"c9"}`, payment.ErrCourseNotFound, fiber.StatusNotFound},
		{"sold out", `{"itemType":"SUB_TRAINING","itemId":"st1"}`, payment.ErrCapacityExceeded, fiber.StatusConflict},
		{"gateway down", `{"itemType":"COURSE","itemId":"c1"}`, apperr.Wrap(payment.ErrGatewayUnavailable, errors.New("timeout")), fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newPaymentApp(&fakePaymentService{checkoutErr: tt.svcErr})
			req := httptest.NewRequest("POST", "/checkout", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHandleFawryCallback(t *testing.T) {
	tests := []struct {
		name     string
		outcome  payment.Outcome
		err      error
		status   int
		contains string
	}{
		{"processed", payment.OutcomeProcessed, nil, fiber.StatusOK, `"outcome":"processed"`},
		{"duplicate", payment.OutcomeDuplicate, nil, fiber.StatusOK, `"duplicate":true`},
		{"ignored", payment.OutcomeIgnored, nil, fiber.StatusOK, `"outcome":"ignored"`},
		{"bad signature", "", payment.ErrSignatureMismatch, fiber.StatusUnauthorized, "invalid_callback_signature"},
		{"not json", "", apperr.Wrap(payment.ErrUnreadableCallback, errors.New("eof")), fiber.StatusBadRequest, "unreadable_callback"},
		{"no items", "", payment.ErrMalformedCallback, fiber.StatusUnprocessableEntity, "malformed_callback"},
		{"unknown item", "", payment.ErrUnknownPurchaseItem, fiber.StatusNotFound, ""},
		{"sold out", "", payment.ErrCapacityExceeded, fiber.StatusConflict, "no_seats_available"},
		{"database down", "", errors.New("connection refused"), fiber.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePaymentService{outcome: tt.outcome, callbackErr: tt.err}
			app := newPaymentApp(svc)

			payload := `{"merchantRefNumber":"S1-abc","orderStatus":"PAID"}`
			req := httptest.NewRequest("POST", "/webhooks/fawry", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contains != "" {
				assert.Contains(t, readBody(t, resp.Body), tt.contains)
			}
			assert.Equal(t, payload, string(svc.callbackBody))
			assert.True(t, svc.hadDeadline)
		})
	}
}
