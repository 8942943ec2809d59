package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LearnFox/app/repository"
	"github.com/ManuelReschke/LearnFox/internal/pkg/usercontext"
)

// CatalogController serves the read-only views of purchasable items
type CatalogController struct {
	repos *repository.Repositories
}

func NewCatalogController(repos *repository.Repositories) *CatalogController {
	return &CatalogController{repos: repos}
}

func (cc *CatalogController) HandleGetCourse(c *fiber.Ctx) error {
	course, err := cc.repos.Course.GetWithCurriculum(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(course)
}

func (cc *CatalogController) HandleGetEvent(c *fiber.Ctx) error {
	event, err := cc.repos.Event.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	enrolled, err := cc.repos.Event.CountEnrolled(event.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"event":             event,
		"students_enrolled": enrolled,
	})
}

// HandleGetSubTraining includes the price a checkout would charge right now
func (cc *CatalogController) HandleGetSubTraining(c *fiber.Ctx) error {
	st, err := cc.repos.SubTraining.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	now := timeNow()
	return c.JSON(fiber.Map{
		"sub_training":    st,
		"effective_price": st.EffectivePrice(now),
		"offer_active":    st.Offer.ActiveAt(now),
	})
}

func (cc *CatalogController) HandleListActiveOffers(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	list, err := cc.repos.SubTraining.ListWithActiveOffer(offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": list})
}

// HandleMyEnrollments lists the logged in student's enrollments
func (cc *CatalogController) HandleMyEnrollments(c *fiber.Ctx) error {
	studentID := usercontext.GetStudentID(c)
	offset, limit := pagination(c)

	list, err := cc.repos.Enrollment.GetByStudentID(studentID, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	total, err := cc.repos.Enrollment.CountByStudentID(studentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"items": list,
		"total": total,
	})
}
