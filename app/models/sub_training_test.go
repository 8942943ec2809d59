package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSubTrainingEffectivePrice(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)

	st := &SubTraining{
		OriginalPrice: decimal.NewFromInt(100),
		Offer: Offer{
			HasOffer:       true,
			OfferPrice:     decimal.NewNullDecimal(decimal.NewFromInt(80)),
			OfferStartDate: &start,
			OfferEndDate:   &end,
		},
	}

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before window", start.Add(-time.Second), "100"},
		{"window start", start, "80"},
		{"inside window", start.Add(72 * time.Hour), "80"},
		{"window end", end, "80"},
		{"after window", end.Add(time.Second), "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.EffectivePrice(tt.at).String())
		})
	}
}

func TestOfferZeroValueIsInactive(t *testing.T) {
	var o Offer
	assert.False(t, o.ActiveAt(time.Now()))
}

func TestEnsureID(t *testing.T) {
	assert.Equal(t, "S1", ensureID("S1"))
	assert.Len(t, ensureID(""), 36)
}

func TestOrderRejectsUpdates(t *testing.T) {
	o := &Order{}
	assert.ErrorIs(t, o.BeforeUpdate(nil), ErrOrderImmutable)
}
