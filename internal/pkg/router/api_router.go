package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/LearnFox/app/controllers"
	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/middleware"
	"github.com/ManuelReschke/LearnFox/internal/pkg/ratelimit"
)

const webhookPrefix = "/api/v1/webhooks/"

type ApiRouter struct {
	ctrl *controllers.Controllers
	cfg  Config
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limiterCfg := ratelimit.Config(h.cfg.LimiterStorage)
	// gateway redeliveries must never be throttled
	limiterCfg.Next = func(c *fiber.Ctx) bool {
		return strings.HasPrefix(c.Path(), webhookPrefix)
	}

	api := app.Group("/api", limiter.New(limiterCfg))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// gateway notifications, authenticated by their signature
	v1.Post("/webhooks/fawry", h.ctrl.Payment.HandleFawryCallback)

	// catalog
	v1.Get("/courses/:id", h.ctrl.Catalog.HandleGetCourse)
	v1.Get("/events/:id", h.ctrl.Catalog.HandleGetEvent)
	v1.Get("/sub-trainings/:id", h.ctrl.Catalog.HandleGetSubTraining)
	v1.Get("/offers", h.ctrl.Catalog.HandleListActiveOffers)

	// student
	student := middleware.RequireRole(models.ROLE_STUDENT)
	v1.Get("/me/enrollments", middleware.RequireAPIAuth, h.ctrl.Catalog.HandleMyEnrollments)
	v1.Post("/payments/checkout", student, h.ctrl.Payment.HandleCheckout)
	v1.Post("/quizzes/:id/submissions", student, h.ctrl.Quiz.HandleSubmit)
	v1.Get("/quizzes/:id/result", student, h.ctrl.Quiz.HandleGetResult)

	// staff
	v1.Post("/blocks/:id/videos", middleware.RequireRole(models.ROLE_INSTRUCTOR, models.ROLE_ADMIN), h.ctrl.Curriculum.HandleUploadVideo)
	admin := middleware.RequireRole(models.ROLE_ADMIN)
	v1.Put("/sub-trainings/:id/offer", admin, h.ctrl.Offer.HandleApplyOffer)
	v1.Delete("/sub-trainings/:id/offer", admin, h.ctrl.Offer.HandleRemoveOffer)
}

func NewApiRouter(ctrl *controllers.Controllers, cfg Config) *ApiRouter {
	return &ApiRouter{ctrl: ctrl, cfg: cfg}
}
