package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/metrics"
)

var (
	ErrStudentNotFound     = apperr.NotFound("student_not_found", "student not found")
	ErrCourseNotFound      = apperr.NotFound("course_not_found", "course not found")
	ErrEventNotFound       = apperr.NotFound("event_not_found", "event not found")
	ErrSubTrainingNotFound = apperr.NotFound("sub_training_not_found", "sub-training not found")
	ErrOrderNotFound       = apperr.NotFound("order_not_found", "order not found")

	ErrSignatureMismatch  = apperr.New(apperr.KindSignatureMismatch, "invalid_callback_signature", "callback signature does not match")
	ErrMalformedCallback  = apperr.Validation("malformed_callback", "callback payload is malformed")
	ErrUnreadableCallback = apperr.Validation("unreadable_callback", "callback body is not valid JSON")
	ErrCapacityExceeded   = apperr.New(apperr.KindCapacityExceeded, "no_seats_available", "no seats left")
	ErrInvalidCheckout    = apperr.Validation("invalid_checkout", "checkout request is invalid")
	ErrItemNotPayable     = apperr.Validation("item_not_payable", "item has no price to pay")
)

// errDuplicateOrder rolls back a reconciliation that lost the insert race.
var errDuplicateOrder = errors.New("order already recorded")

// Marker is a fast idempotency cache in front of the orders table.
type Marker interface {
	IsProcessed(ctx context.Context, merchantRef string) (bool, error)
	MarkProcessed(ctx context.Context, merchantRef string) error
}

// Notifier is told about every enrollment created from a paid order.
type Notifier interface {
	NotifyEnrollment(ctx context.Context, notice EnrollmentNotice) error
}

// Service starts checkouts and reconciles gateway callbacks into enrollments.
type Service struct {
	repo     Repository
	resolver *Resolver
	gateway  Gateway
	config   *FawryConfig
	marker   Marker
	notifier Notifier
	now      func() time.Time
}

type Option func(*Service)

func WithMarker(m Marker) Option {
	return func(s *Service) { s.marker = m }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a payment service from an injected repository.
func NewService(repo Repository, gateway Gateway, cfg *FawryConfig, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		resolver: NewResolver(repo),
		gateway:  gateway,
		config:   cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway Gateway, cfg *FawryConfig, opts ...Option) *Service {
	return NewService(NewRepository(db), gateway, cfg, opts...)
}

// Checkout prices the requested item, signs a charge request and hands it to
// the gateway. Nothing is persisted; the order is only written once the
// gateway reports the payment.
func (s *Service) Checkout(ctx context.Context, studentID string, in CheckoutInput) (*CheckoutResult, error) {
	t := PurchaseType(in.ItemType)
	if !t.Valid() || strings.TrimSpace(in.ItemID) == "" {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCheckout
	}

	student, err := s.repo.FindStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	title, price, err := s.priceItem(ctx, PurchaseRef{Type: t, ID: in.ItemID}, now)
	if err != nil {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if !price.IsPositive() {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		return nil, ErrItemNotPayable
	}

	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = s.config.ReturnURL
	}

	expiresAt := now.Add(s.config.ChargeTTL)
	itemCode := ItemCode(t, in.ItemID)
	req := ChargeRequest{
		MerchantCode:      s.config.MerchantCode,
		MerchantRefNum:    NewMerchantRef(student.ID),
		CustomerProfileID: student.ID,
		CustomerName:      student.Name,
		CustomerMobile:    student.Mobile,
		CustomerEmail:     student.Email,
		ChargeItems: []ChargeItem{{
			ItemID:      itemCode,
			Description: title,
			Price:       NewAmount(price),
			Quantity:    1,
		}},
		ReturnURL:     returnURL,
		PaymentExpiry: expiresAt.UnixMilli(),
		Language:      s.config.Language,
	}
	req.Signature = SignChargeRequest(req, s.config.SecureKey)

	redirectURL, err := s.gateway.CreateCharge(ctx, req)
	if err != nil {
		metrics.Checkouts.WithLabelValues("gateway_error").Inc()
		log.Errorf("[Payment] Charge request %s failed: %v", req.MerchantRefNum, err)
		if apperr.KindOf(err) == apperr.KindUpstream {
			return nil, err
		}
		return nil, apperr.Wrap(ErrGatewayUnavailable, err)
	}

	metrics.Checkouts.WithLabelValues("ok").Inc()
	log.Infof("[Payment] Checkout %s started for student %s (%s %s, %s)", req.MerchantRefNum, student.ID, t, in.ItemID, price.StringFixed(2))
	return &CheckoutResult{
		MerchantRefNumber: req.MerchantRefNum,
		ItemCode:          itemCode,
		Amount:            price,
		RedirectURL:       redirectURL,
		ExpiresAt:         expiresAt.UTC(),
	}, nil
}

func (s *Service) priceItem(ctx context.Context, ref PurchaseRef, now time.Time) (string, decimal.Decimal, error) {
	switch ref.Type {
	case PurchaseCourse:
		c, err := s.repo.FindCourse(ctx, ref.ID)
		if err != nil {
			return "", decimal.Zero, err
		}
		return c.Title, c.Price, nil
	case PurchaseEvent:
		e, err := s.repo.FindEvent(ctx, ref.ID)
		if err != nil {
			return "", decimal.Zero, err
		}
		return e.Title, e.Price, nil
	case PurchaseSubTraining:
		st, err := s.repo.FindSubTraining(ctx, ref.ID)
		if err != nil {
			return "", decimal.Zero, err
		}
		if st.AvailableSeats <= 0 {
			return "", decimal.Zero, ErrCapacityExceeded
		}
		return st.Title, st.EffectivePrice(now), nil
	}
	return "", decimal.Zero, ErrInvalidCheckout
}

// ProcessCallback decodes and reconciles one raw callback delivery and appends
// it with its outcome to the callback audit log.
func (s *Service) ProcessCallback(ctx context.Context, body []byte) (Outcome, error) {
	p, err := ParseCallbackPayload(body)
	if err != nil {
		err = apperr.Wrap(ErrUnreadableCallback, err)
		s.recordDelivery(ctx, body, nil, false, "", err)
		metrics.PaymentCallbacks.WithLabelValues(ErrUnreadableCallback.Code).Inc()
		return "", err
	}

	signatureValid := VerifyCallbackSignature(*p, s.config.SecureKey)
	outcome, err := s.HandleCallback(ctx, p)
	s.recordDelivery(ctx, body, p, signatureValid, outcome, err)
	return outcome, err
}

// HandleCallback reconciles a decoded callback. Checks run in a fixed order:
// idempotency, signature, payload shape, payment status, item resolution.
// A duplicate returns OutcomeDuplicate without error; every failure is
// returned so the gateway redelivers.
func (s *Service) HandleCallback(ctx context.Context, p *CallbackPayload) (Outcome, error) {
	start := time.Now()
	outcome, err := s.reconcile(ctx, p)
	metrics.PaymentCallbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues(apperr.CodeOf(err)).Inc()
		log.Errorf("[Payment] Callback %s failed: %v", p.MerchantRefNumber, err)
		return "", err
	}
	metrics.PaymentCallbacks.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

func (s *Service) reconcile(ctx context.Context, p *CallbackPayload) (Outcome, error) {
	ref := strings.TrimSpace(p.MerchantRefNumber)
	if ref == "" {
		return "", apperr.WithMessage(ErrMalformedCallback, "merchantRefNumber is missing")
	}

	duplicate, err := s.alreadyProcessed(ctx, ref)
	if err != nil {
		return "", err
	}
	if duplicate {
		log.Infof("[Payment] Callback %s already processed", ref)
		return OutcomeDuplicate, nil
	}

	if !VerifyCallbackSignature(*p, s.config.SecureKey) {
		return "", ErrSignatureMismatch
	}

	if len(p.OrderItems) == 0 {
		return "", apperr.WithMessage(ErrMalformedCallback, "callback for %s has no order items", ref)
	}

	if !strings.EqualFold(p.OrderStatus, models.ORDER_STATUS_PAID) {
		log.Infof("[Payment] Callback %s has status %s, no enrollment", ref, p.OrderStatus)
		return OutcomeIgnored, nil
	}

	item, err := s.resolver.Resolve(ctx, p.OrderItems[0].ItemCode)
	if err != nil {
		return "", err
	}

	studentID, ok := StudentIDFromMerchantRef(ref)
	if !ok {
		return "", apperr.WithMessage(ErrMalformedCallback, "cannot derive student from merchant reference %q", ref)
	}
	student, err := s.repo.FindStudent(ctx, studentID)
	if err != nil {
		return "", err
	}

	order, err := buildOrder(p, student.ID, item)
	if err != nil {
		return "", err
	}

	err = s.repo.WithinTransaction(ctx, func(tx Repository) error {
		created, err := tx.CreateOrderIfNotExists(ctx, order)
		if err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		if !created {
			return errDuplicateOrder
		}
		if err := enroll(ctx, tx, item); err != nil {
			return err
		}
		return tx.AddEnrollment(ctx, &models.Enrollment{
			StudentID:         student.ID,
			ItemType:          string(item.Type),
			ItemID:            item.ID,
			MerchantRefNumber: ref,
		})
	})
	if errors.Is(err, errDuplicateOrder) {
		log.Infof("[Payment] Callback %s lost the race against a concurrent delivery", ref)
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return "", err
	}

	metrics.Enrollments.WithLabelValues(string(item.Type)).Inc()
	log.Infof("[Payment] Enrolled student %s in %s %s (order %s)", student.ID, item.Type, item.ID, ref)

	if s.marker != nil {
		if err := s.marker.MarkProcessed(ctx, ref); err != nil {
			log.Warnf("[Payment] Failed to mark %s as processed: %v", ref, err)
		}
	}
	s.notify(ctx, student, item, p)

	return OutcomeProcessed, nil
}

func (s *Service) alreadyProcessed(ctx context.Context, ref string) (bool, error) {
	if s.marker != nil {
		seen, err := s.marker.IsProcessed(ctx, ref)
		if err != nil {
			log.Warnf("[Payment] Idempotency cache unavailable for %s: %v", ref, err)
		} else if seen {
			return true, nil
		}
	}

	_, err := s.repo.FindOrderByMerchantRef(ctx, ref)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrOrderNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("lookup order %s: %w", ref, err)
}

// enroll applies the per-type side effect of a paid order.
func enroll(ctx context.Context, tx Repository, item PurchaseRef) error {
	switch item.Type {
	case PurchaseCourse:
		ok, err := tx.IncrementCourseEnrollment(ctx, item.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCourseNotFound
		}
	case PurchaseSubTraining:
		ok, err := tx.ReserveSubTrainingSeat(ctx, item.ID)
		if err != nil {
			return err
		}
		if !ok {
			exists, err := tx.SubTrainingExists(ctx, item.ID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrSubTrainingNotFound
			}
			return apperr.WithMessage(ErrCapacityExceeded, "sub-training %s has no seats left", item.ID)
		}
	case PurchaseEvent:
		ok, err := tx.EventExists(ctx, item.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEventNotFound
		}
	default:
		return ErrUnknownPurchaseItem
	}
	return nil
}

func buildOrder(p *CallbackPayload, studentID string, item PurchaseRef) (*models.Order, error) {
	items, err := json.Marshal(p.OrderItems)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &models.Order{
		MerchantRefNumber: strings.TrimSpace(p.MerchantRefNumber),
		FawryRefNumber:    p.FawryRefNumber,
		StudentID:         studentID,
		ItemType:          string(item.Type),
		ItemID:            item.ID,
		OrderStatus:       strings.ToUpper(p.OrderStatus),
		PaymentMethod:     p.PaymentMethod,
		PaymentAmount:     p.PaymentAmount.Decimal,
		OrderAmount:       p.OrderAmount.Decimal,
		FawryFees:         p.FawryFees.Decimal,
		Items:             datatypes.JSON(items),
		Payload:           datatypes.JSON(payload),
		FailureErrorCode:  string(p.FailureErrorCode),
		FailureReason:     p.FailureReason,
	}, nil
}

func (s *Service) notify(ctx context.Context, student *models.Student, item PurchaseRef, p *CallbackPayload) {
	if s.notifier == nil {
		return
	}

	title := s.itemTitle(ctx, item)

	notice := EnrollmentNotice{
		StudentID:         student.ID,
		StudentName:       student.Name,
		StudentEmail:      student.Email,
		ItemType:          item.Type,
		ItemID:            item.ID,
		ItemTitle:         title,
		MerchantRefNumber: p.MerchantRefNumber,
		Amount:            p.PaymentAmount.StringFixed(2),
	}
	if err := s.notifier.NotifyEnrollment(ctx, notice); err != nil {
		log.Warnf("[Payment] Failed to queue enrollment notice for %s: %v", p.MerchantRefNumber, err)
	}
}

func (s *Service) itemTitle(ctx context.Context, item PurchaseRef) string {
	switch item.Type {
	case PurchaseCourse:
		if c, err := s.repo.FindCourse(ctx, item.ID); err == nil {
			return c.Title
		}
	case PurchaseEvent:
		if e, err := s.repo.FindEvent(ctx, item.ID); err == nil {
			return e.Title
		}
	case PurchaseSubTraining:
		if st, err := s.repo.FindSubTraining(ctx, item.ID); err == nil {
			return st.Title
		}
	}
	return item.ID
}

// recordDelivery appends the delivery to the callback audit log. Failures are
// logged only; the audit log never decides the response.
func (s *Service) recordDelivery(ctx context.Context, body []byte, p *CallbackPayload, signatureValid bool, outcome Outcome, procErr error) {
	now := s.now()
	event := &models.PaymentCallbackEvent{
		PayloadHash:    sha256Hex(string(body)),
		SignatureValid: signatureValid,
		Outcome:        string(outcome),
		ProcessedAt:    &now,
	}
	if json.Valid(body) {
		event.Payload = datatypes.JSON(body)
	}
	if p != nil {
		event.MerchantRefNumber = strings.TrimSpace(p.MerchantRefNumber)
		event.OrderStatus = strings.ToUpper(p.OrderStatus)
	}
	if procErr != nil {
		event.Outcome = models.CALLBACK_OUTCOME_FAILED
		event.ProcessingError = procErr.Error()
	}

	if err := s.repo.CreateCallbackEvent(ctx, event); err != nil {
		log.Warnf("[Payment] Failed to record callback delivery %s: %v", event.MerchantRefNumber, err)
	}
}
