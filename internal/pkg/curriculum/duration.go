package curriculum

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

var ErrInvalidDuration = apperr.Validation("invalid_duration", "duration must be formatted as mm:ss")

// drift absorbs float error when minutes are converted back to seconds,
// e.g. 15.499999999 must still render as 15:30.
const drift = 1e-9

// ToMinutes parses a "mm:ss" duration into fractional minutes. Minutes may
// exceed two digits, seconds must be below 60.
func ToMinutes(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, apperr.WithMessage(ErrInvalidDuration, "duration %q must be formatted as mm:ss", s)
	}
	mins, err := parseDigits(parts[0])
	if err != nil {
		return 0, apperr.WithMessage(ErrInvalidDuration, "duration %q has invalid minutes", s)
	}
	secs, err := parseDigits(parts[1])
	if err != nil || secs >= 60 {
		return 0, apperr.WithMessage(ErrInvalidDuration, "duration %q has invalid seconds", s)
	}
	return float64(mins) + float64(secs)/60, nil
}

// parseDigits accepts only ASCII digits, so signs and spaces are rejected.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// ToDurationString formats fractional minutes as "mm:ss", truncating to whole
// seconds.
func ToDurationString(minutes float64) string {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "00:00"
	}
	total := int64(math.Floor(minutes*60 + drift))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// AddDurations folds addition into a running "mm:ss" total.
func AddDurations(total, addition string) (string, error) {
	current, err := ToMinutes(total)
	if err != nil {
		return "", err
	}
	extra, err := ToMinutes(addition)
	if err != nil {
		return "", err
	}
	return ToDurationString(current + extra), nil
}
