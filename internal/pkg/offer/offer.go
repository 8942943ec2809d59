package offer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

var (
	ErrInvalidWindow   = apperr.Validation("invalid_offer_window", "offer start date must not be after its end date")
	ErrAlreadyExpired  = apperr.Validation("offer_already_expired", "offer end date is in the past")
	ErrNotADiscount    = apperr.Validation("offer_not_a_discount", "offer price must be lower than the original price")
	ErrInvalidPrice    = apperr.Validation("invalid_offer_price", "offer price must not be negative")
	ErrInvalidDiscount = apperr.Validation("invalid_discount_percentage", "discount percentage must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Input is an offer as submitted by an instructor.
type Input struct {
	OfferPrice         decimal.Decimal  `json:"offerPrice"`
	OfferStartDate     time.Time        `json:"offerStartDate" validate:"required"`
	OfferEndDate       time.Time        `json:"offerEndDate" validate:"required"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`
}

// Apply validates in against the original price and returns the offer to
// store. The window is checked first, then expiry, then the price.
func Apply(original decimal.Decimal, in Input, now time.Time) (models.Offer, error) {
	if in.OfferStartDate.After(in.OfferEndDate) {
		return models.Offer{}, ErrInvalidWindow
	}
	if in.OfferEndDate.Before(now) {
		return models.Offer{}, ErrAlreadyExpired
	}
	if !in.OfferPrice.LessThan(original) {
		return models.Offer{}, apperr.WithMessage(ErrNotADiscount, "offer price %s must be lower than %s", in.OfferPrice.StringFixed(2), original.StringFixed(2))
	}
	if in.OfferPrice.IsNegative() {
		return models.Offer{}, ErrInvalidPrice
	}

	var discount decimal.Decimal
	if in.DiscountPercentage != nil {
		discount = *in.DiscountPercentage
		if !discount.IsPositive() || discount.GreaterThan(hundred) {
			return models.Offer{}, ErrInvalidDiscount
		}
	} else {
		discount = original.Sub(in.OfferPrice).Div(original).Mul(hundred).Round(2)
	}

	start := in.OfferStartDate.UTC()
	end := in.OfferEndDate.UTC()
	return models.Offer{
		HasOffer:           true,
		OfferPrice:         decimal.NewNullDecimal(in.OfferPrice.Round(2)),
		OfferStartDate:     &start,
		OfferEndDate:       &end,
		DiscountPercentage: decimal.NewNullDecimal(discount),
	}, nil
}

// Remove returns the cleared offer.
func Remove() models.Offer {
	return models.Offer{}
}
