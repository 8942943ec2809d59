package payment

import (
	"strings"

	"github.com/google/uuid"
)

const uuidLen = 36

// NewMerchantRef creates a unique merchant reference "{studentID}-{uuid}".
func NewMerchantRef(studentID string) string {
	return studentID + "-" + uuid.NewString()
}

// StudentIDFromMerchantRef extracts the student id from a merchant reference.
// When the reference ends in "-<uuid>" everything before it is the student id,
// so ids that contain dashes survive. Otherwise the segment before the first
// dash is used.
func StudentIDFromMerchantRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if n := len(ref); n > uuidLen+1 && ref[n-uuidLen-1] == '-' {
		if _, err := uuid.Parse(ref[n-uuidLen:]); err == nil {
			return ref[:n-uuidLen-1], true
		}
	}
	studentID, _, found := strings.Cut(ref, "-")
	if !found || studentID == "" {
		return "", false
	}
	return studentID, true
}

var itemCodePrefixes = map[string]PurchaseType{
	"course":      PurchaseCourse,
	"event":       PurchaseEvent,
	"subtraining": PurchaseSubTraining,
}

// ItemCode builds the type-tagged item code sent with a charge item.
func ItemCode(t PurchaseType, id string) string {
	for prefix, pt := range itemCodePrefixes {
		if pt == t {
			return prefix + ":" + id
		}
	}
	return id
}

// ParseItemCode splits a tagged item code. Untagged codes return tagged=false
// and the code itself as id.
func ParseItemCode(code string) (t PurchaseType, id string, tagged bool) {
	code = strings.TrimSpace(code)
	prefix, rest, found := strings.Cut(code, ":")
	if !found {
		return "", code, false
	}
	pt, ok := itemCodePrefixes[strings.ToLower(prefix)]
	if !ok || rest == "" {
		return "", code, false
	}
	return pt, rest, true
}
