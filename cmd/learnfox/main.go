package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/LearnFox/app/controllers"
	"github.com/ManuelReschke/LearnFox/app/repository"
	"github.com/ManuelReschke/LearnFox/internal/pkg/cache"
	"github.com/ManuelReschke/LearnFox/internal/pkg/curriculum"
	"github.com/ManuelReschke/LearnFox/internal/pkg/database"
	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
	"github.com/ManuelReschke/LearnFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/LearnFox/internal/pkg/mail"
	"github.com/ManuelReschke/LearnFox/internal/pkg/metrics"
	"github.com/ManuelReschke/LearnFox/internal/pkg/objectstore"
	"github.com/ManuelReschke/LearnFox/internal/pkg/offer"
	"github.com/ManuelReschke/LearnFox/internal/pkg/payment"
	"github.com/ManuelReschke/LearnFox/internal/pkg/quiz"
	"github.com/ManuelReschke/LearnFox/internal/pkg/ratelimit"
	"github.com/ManuelReschke/LearnFox/internal/pkg/router"
)

const processedMarkerTTL = 7 * 24 * time.Hour

func main() {
	app, shutdown := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("[App] Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[App] Shutdown failed: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	shutdown()
	if err != nil {
		log.Fatal(err)
	}
}

// NewApplication wires storage, background workers and routes. The returned
// function stops the background workers.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	metrics.Register()

	db := database.GetDB()

	// background jobs: enrollment mails and orphaned media cleanup
	manager := jobqueue.GetManager()
	queue := manager.GetQueue()

	var store objectstore.Store
	var media jobqueue.MediaDeleter
	if cfg, err := objectstore.LoadConfig(); err != nil {
		log.Warnf("[App] Object storage disabled: %v", err)
	} else if client, err := objectstore.NewClient(context.Background(), cfg); err != nil {
		log.Errorf("[App] Object storage client failed: %v", err)
	} else {
		store = client
		media = client
	}
	manager.Configure(mail.NewSMTPMailerFromEnv(), media)
	manager.Start()

	fawryCfg, err := payment.LoadFawryConfig()
	if err != nil {
		log.Fatalf("[App] Payment gateway config: %v", err)
	}
	paymentService := payment.NewServiceFromDB(db, payment.NewFawryClient(fawryCfg), fawryCfg,
		payment.WithMarker(cache.NewProcessedMarker(cache.GetClient(), processedMarkerTTL)),
		payment.WithNotifier(queue),
	)

	offerService := offer.NewServiceFromDB(db)
	sweeper := offer.NewSweeper(offerService, "")
	if err := sweeper.Start(); err != nil {
		log.Fatalf("[App] Offer sweeper: %v", err)
	}

	ctrl := controllers.New(controllers.Dependencies{
		Payment:      paymentService,
		Quiz:         quiz.NewServiceFromDB(db),
		Curriculum:   curriculum.NewServiceFromDB(db, store, queue),
		Offer:        offerService,
		Repositories: repository.NewFactory(db).GetRepositories(),
	})

	app := fiber.New(fiber.Config{
		AppName:   "LearnFox",
		BodyLimit: 512 * 1024 * 1024, // video uploads
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	jwtSecret := env.GetEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Warn("[App] JWT_SECRET is not set, every request is treated as anonymous")
	}

	router.InstallRouter(app, ctrl, router.Config{
		JWTSecret:       jwtSecret,
		LimiterStorage:  ratelimit.Storage(),
		MetricsUser:     env.GetEnv("METRICS_USER", ""),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
	})

	shutdown := func() {
		<-sweeper.Stop().Done()
		manager.Stop()
	}
	return app, shutdown
}
