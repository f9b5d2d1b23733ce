package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher periodically re-fetches every session that has data.
type Refresher struct {
	scheduler  *gocron.Scheduler
	service    *Service
	interval   time.Duration
	perSession time.Duration
	logger     *slog.Logger

	// ctx is canceled by Stop so an in-flight run ends early.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefresher creates a refresher. perSession bounds the fetch of each
// session; a run itself has no deadline.
func NewRefresher(service *Service, interval, perSession time.Duration, logger *slog.Logger) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		scheduler:  s,
		service:    service,
		interval:   interval,
		perSession: perSession,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start schedules the refresh job. The first run happens one interval from now.
func (r *Refresher) Start() error {
	_, err := r.scheduler.Every(r.interval).WaitForSchedule().Do(r.run)
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	r.logger.Info("session refresher started", "interval", r.interval)
	return nil
}

// Stop cancels future runs and interrupts a run in progress.
func (r *Refresher) Stop() {
	r.cancel()
	r.scheduler.Stop()
}

func (r *Refresher) run() {
	start := time.Now()
	refreshed, failed := r.service.RefreshAll(r.ctx, r.perSession)
	r.logger.Info("session refresh completed",
		"refreshed", refreshed,
		"failed", failed,
		"duration", time.Since(start),
	)
}
