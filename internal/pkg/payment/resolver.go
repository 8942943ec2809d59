package payment

import (
	"context"
	"fmt"

	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
)

var ErrUnknownPurchaseItem = apperr.NotFound("unknown_purchase_item", "purchase item does not match any course, event or sub-training")

// Resolver classifies payment item codes.
type Resolver struct {
	catalog Catalog
}

func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

type probe struct {
	t      PurchaseType
	exists func(ctx context.Context, id string) (bool, error)
}

// Resolve returns the entity an item code refers to. Tagged codes
// ("course:<id>") are checked against their own store only; untagged codes are
// probed against sub-trainings, events and courses in that order.
func (r *Resolver) Resolve(ctx context.Context, itemCode string) (PurchaseRef, error) {
	t, id, tagged := ParseItemCode(itemCode)
	if id == "" {
		return PurchaseRef{}, apperr.WithMessage(ErrUnknownPurchaseItem, "empty item code")
	}

	probes := []probe{
		{PurchaseSubTraining, r.catalog.SubTrainingExists},
		{PurchaseEvent, r.catalog.EventExists},
		{PurchaseCourse, r.catalog.CourseExists},
	}

	for _, p := range probes {
		if tagged && p.t != t {
			continue
		}
		ok, err := p.exists(ctx, id)
		if err != nil {
			return PurchaseRef{}, fmt.Errorf("lookup %s %s: %w", p.t, id, err)
		}
		if ok {
			return PurchaseRef{Type: p.t, ID: id}, nil
		}
	}

	return PurchaseRef{}, apperr.WithMessage(ErrUnknownPurchaseItem, "item %q does not match any purchasable entity", itemCode)
}
