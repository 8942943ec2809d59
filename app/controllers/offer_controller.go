package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/offer"
)

type OfferService interface {
	ApplyOffer(ctx context.Context, subTrainingID string, in offer.Input) (*models.SubTraining, error)
	RemoveOffer(ctx context.Context, subTrainingID string) (*models.SubTraining, error)
}

type OfferController struct {
	service OfferService
}

func NewOfferController(service OfferService) *OfferController {
	return &OfferController{service: service}
}

// HandleApplyOffer validates and stores a time-limited discount
func (oc *OfferController) HandleApplyOffer(c *fiber.Ctx) error {
	var in offer.Input
	if err := parseAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}

	st, err := oc.service.ApplyOffer(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func (oc *OfferController) HandleRemoveOffer(c *fiber.Ctx) error {
	st, err := oc.service.RemoveOffer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}
