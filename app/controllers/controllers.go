package controllers

import "github.com/ManuelReschke/LearnFox/app/repository"

// Dependencies are the services the HTTP layer talks to
type Dependencies struct {
	Payment      PaymentService
	Quiz         QuizService
	Curriculum   CurriculumService
	Offer        OfferService
	Repositories *repository.Repositories
}

// Controllers bundles every controller the router mounts
type Controllers struct {
	Payment    *PaymentController
	Quiz       *QuizController
	Curriculum *CurriculumController
	Offer      *OfferController
	Catalog    *CatalogController
}

func New(deps Dependencies) *Controllers {
	return &Controllers{
		Payment:    NewPaymentController(deps.Payment),
		Quiz:       NewQuizController(deps.Quiz),
		Curriculum: NewCurriculumController(deps.Curriculum),
		Offer:      NewOfferController(deps.Offer),
		Catalog:    NewCatalogController(deps.Repositories),
	}
}
