package payment

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/LearnFox/app/models"
)

// PurchaseType is the kind of entity a payment item refers to.
type PurchaseType string

const (
	PurchaseCourse      PurchaseType = models.ITEM_TYPE_COURSE
	PurchaseEvent       PurchaseType = models.ITEM_TYPE_EVENT
	PurchaseSubTraining PurchaseType = models.ITEM_TYPE_SUB_TRAINING
)

// Valid reports whether t is one of the known purchase types.
func (t PurchaseType) Valid() bool {
	switch t {
	case PurchaseCourse, PurchaseEvent, PurchaseSubTraining:
		return true
	}
	return false
}

// PurchaseRef identifies the entity behind a payment item.
type PurchaseRef struct {
	Type PurchaseType
	ID   string
}

// Outcome is the result of handling a callback delivery.
type Outcome string

const (
	OutcomeProcessed Outcome = models.CALLBACK_OUTCOME_PROCESSED
	OutcomeDuplicate Outcome = models.CALLBACK_OUTCOME_DUPLICATE
	OutcomeIgnored   Outcome = models.CALLBACK_OUTCOME_IGNORED
)

// Amount is a money value that travels as a plain JSON number with two
// decimals, as the gateway expects.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

// flexString accepts JSON strings and numbers; the gateway is not consistent
// about error codes.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ChargeItem is one line of an outbound charge request.
type ChargeItem struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
	Price       Amount `json:"price"`
	Quantity    int    `json:"quantity"`
}

// ChargeRequest is the body sent to the gateway to start a payment session.
type ChargeRequest struct {
	MerchantCode      string       `json:"merchantCode"`
	MerchantRefNum    string       `json:"merchantRefNum"`
	CustomerProfileID string       `json:"customerProfileId,omitempty"`
	CustomerName      string       `json:"customerName,omitempty"`
	CustomerMobile    string       `json:"customerMobile,omitempty"`
	CustomerEmail     string       `json:"customerEmail,omitempty"`
	ChargeItems       []ChargeItem `json:"chargeItems"`
	ReturnURL         string       `json:"returnUrl"`
	PaymentExpiry     int64        `json:"paymentExpiry"`
	Language          string       `json:"language,omitempty"`
	Signature         string       `json:"signature"`
}

// ExpiresAt returns the payment expiry as time.
func (r ChargeRequest) ExpiresAt() time.Time {
	return time.UnixMilli(r.PaymentExpiry)
}

// CallbackItem is one order line echoed back by the gateway.
type CallbackItem struct {
	ItemCode string `json:"itemCode"`
	Price    Amount `json:"price"`
	Quantity int    `json:"quantity"`
}

// CallbackPayload is the server notification the gateway posts after a
// payment attempt.
type CallbackPayload struct {
	RequestID              string         `json:"requestId"`
	FawryRefNumber         string         `json:"fawryRefNumber"`
	MerchantRefNumber      string         `json:"merchantRefNumber"`
	CustomerName           string         `json:"customerName"`
	CustomerMobile         string         `json:"customerMobile"`
	CustomerMail           string         `json:"customerMail"`
	CustomerMerchantID     string         `json:"customerMerchantId"`
	PaymentAmount          Amount         `json:"paymentAmount"`
	OrderAmount            Amount         `json:"orderAmount"`
	FawryFees              Amount         `json:"fawryFees"`
	OrderStatus            string         `json:"orderStatus"`
	PaymentMethod          string         `json:"paymentMethod"`
	PaymentTime            int64          `json:"paymentTime"`
	AuthNumber             string         `json:"authNumber"`
	PaymentReferenceNumber string         `json:"paymentRefrenceNumber"`
	OrderExpiryDate        int64          `json:"orderExpiryDate"`
	OrderItems             []CallbackItem `json:"orderItems"`
	FailureErrorCode       flexString     `json:"failureErrorCode"`
	FailureReason          string         `json:"failureReason"`
	MessageSignature       string         `json:"messageSignature"`
}

// ParseCallbackPayload decodes a raw callback body.
func ParseCallbackPayload(body []byte) (*CallbackPayload, error) {
	var p CallbackPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckoutInput is what a student sends to start paying for an item.
type CheckoutInput struct {
	ItemType  string `json:"itemType" validate:"required,oneof=COURSE EVENT SUB_TRAINING"`
	ItemID    string `json:"itemId" validate:"required,max=36"`
	ReturnURL string `json:"returnUrl" validate:"omitempty,url"`
}

// CheckoutResult is returned to the student after the gateway accepted the
// charge request.
type CheckoutResult struct {
	MerchantRefNumber string          `json:"merchantRefNumber"`
	ItemCode          string          `json:"itemCode"`
	Amount            decimal.Decimal `json:"amount"`
	RedirectURL       string          `json:"redirectUrl"`
	ExpiresAt         time.Time       `json:"expiresAt"`
}

// EnrollmentNotice describes a completed enrollment for notifications.
type EnrollmentNotice struct {
	StudentID         string
	StudentName       string
	StudentEmail      string
	ItemType          PurchaseType
	ItemID            string
	ItemTitle         string
	MerchantRefNumber string
	Amount            string
}

func quantityString(q int) string {
	return strconv.Itoa(q)
}
