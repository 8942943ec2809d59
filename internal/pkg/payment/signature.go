package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignChargeRequest computes the charge request signature: SHA-256 over
// merchant code, merchant reference, customer profile id, return URL, every
// item's id, quantity and two-decimal price, and finally the secure key.
func SignChargeRequest(req ChargeRequest, secureKey string) string {
	var b strings.Builder
	b.WriteString(req.MerchantCode)
	b.WriteString(req.MerchantRefNum)
	b.WriteString(req.CustomerProfileID)
	b.WriteString(req.ReturnURL)
	for _, item := range req.ChargeItems {
		b.WriteString(item.ItemID)
		b.WriteString(quantityString(item.Quantity))
		b.WriteString(item.Price.StringFixed(2))
	}
	b.WriteString(secureKey)
	return sha256Hex(b.String())
}

// SignCallback computes the signature the gateway puts on a server
// notification.
func SignCallback(p CallbackPayload, secureKey string) string {
	var b strings.Builder
	b.WriteString(p.FawryRefNumber)
	b.WriteString(p.MerchantRefNumber)
	b.WriteString(p.PaymentAmount.StringFixed(2))
	b.WriteString(p.OrderAmount.StringFixed(2))
	b.WriteString(p.OrderStatus)
	b.WriteString(p.PaymentMethod)
	b.WriteString(p.PaymentReferenceNumber)
	b.WriteString(secureKey)
	return sha256Hex(b.String())
}

// VerifyCallbackSignature recomputes the callback signature and compares it
// in constant time.
func VerifyCallbackSignature(p CallbackPayload, secureKey string) bool {
	sig := strings.TrimSpace(p.MessageSignature)
	if sig == "" || strings.TrimSpace(secureKey) == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}
	expected, _ := hex.DecodeString(SignCallback(p, secureKey))
	return hmac.Equal(expected, decodedSig)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
