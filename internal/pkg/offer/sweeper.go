package offer

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"

	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
)

const DefaultSweepSchedule = "@every 15m"

// Sweeper periodically clears expired offers so listings stop advertising
// them. EffectivePrice already ignores expired offers.
type Sweeper struct {
	cron     *cron.Cron
	service  *Service
	schedule string
}

// NewSweeper creates a sweeper. An empty schedule falls back to
// OFFER_SWEEP_SCHEDULE and then to DefaultSweepSchedule.
func NewSweeper(service *Service, schedule string) *Sweeper {
	if schedule == "" {
		schedule = env.GetEnv("OFFER_SWEEP_SCHEDULE", DefaultSweepSchedule)
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(sweepLogger{}))))
	return &Sweeper{cron: c, service: service, schedule: schedule}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Infof("[Offer] Expiry sweeper scheduled (%s)", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep runs one pass.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.service.ClearExpired(ctx)
	if err != nil {
		log.Errorf("[Offer] Expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Infof("[Offer] Cleared %d expired offers", n)
	}
}

type sweepLogger struct{}

func (sweepLogger) Printf(format string, args ...interface{}) {
	log.Infof("[Offer] "+format, args...)
}
