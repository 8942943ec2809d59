package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/LearnFox/internal/pkg/middleware"
)

type HttpRouter struct {
	cfg Config
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware(h.cfg.JWTSecret))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h.registerMetricsRoutes(app)
}

// registerMetricsRoutes mounts the fiber monitor and the prometheus exporter.
// Both stay unmounted when no credentials are configured.
func (h HttpRouter) registerMetricsRoutes(app *fiber.App) {
	if h.cfg.MetricsUser == "" || h.cfg.MetricsPassword == "" {
		return
	}

	metrics := app.Group("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			h.cfg.MetricsUser: h.cfg.MetricsPassword,
		},
	}))
	metrics.Get("/", monitor.New())
	metrics.Get("/prometheus", adaptor.HTTPHandler(promhttp.Handler()))
}

func NewHttpRouter(cfg Config) *HttpRouter {
	return &HttpRouter{cfg: cfg}
}
