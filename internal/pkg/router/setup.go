package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LearnFox/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Config carries what the routers need besides the controllers
type Config struct {
	JWTSecret       string
	LimiterStorage  fiber.Storage
	MetricsUser     string
	MetricsPassword string
}

func InstallRouter(app *fiber.App, ctrl *controllers.Controllers, cfg Config) {
	// HttpRouter installs the global UserContext middleware, so it has to run
	// before the API routes that depend on it.
	setup(app, NewHttpRouter(cfg), NewApiRouter(ctrl, cfg))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
