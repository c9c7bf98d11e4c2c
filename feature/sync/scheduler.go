package sync

import (
	"context"
	"time"

	"equipment-inventory/core/reconcile"
	"equipment-inventory/core/retry"

	"go.uber.org/zap"
)

// Scheduler runs passes periodically. After a failed pass the next attempt
// comes after an exponential backoff instead of a full interval.
type Scheduler struct {
	svc       *Service
	logger    *zap.Logger
	interval  time.Duration
	onStartup bool
	backoff   *retry.Backoff
	done      chan struct{}
}

// NewScheduler creates a scheduler from the sync configuration.
func NewScheduler(svc *Service, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		svc:       svc,
		logger:    logger,
		interval:  cfg.Interval(),
		onStartup: cfg.OnStartup,
		backoff:   retry.NewBackoff(cfg.RetryMin(), cfg.RetryMax(), 2),
		done:      make(chan struct{}),
	}
}

// Start launches the loop in the background. It stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.svc.Enabled() || (s.interval <= 0 && !s.onStartup) {
		s.logger.Info("Sync scheduler not started", zap.Bool("sync_enabled", s.svc.Enabled()))
		close(s.done)
		return
	}

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("on_startup", s.onStartup),
	)
	go s.loop(ctx)
}

// Done is closed when the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	next := s.interval
	if s.onStartup {
		next = 0
	}
	timer := time.NewTimer(next)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopped")
			return
		case <-timer.C:
		}

		_, err := s.svc.Run(ctx, reconcile.Options{})
		switch {
		case err == nil:
			s.backoff.Reset()
			next = s.interval
		case ctx.Err() != nil:
			s.logger.Info("Sync scheduler stopped")
			return
		default:
			next = s.backoff.Next()
			s.logger.Warn("Scheduled sync failed",
				zap.Int("consecutive_failures", s.backoff.Attempts()),
				zap.Duration("retry_in", next),
			)
		}

		if next <= 0 && err == nil {
			return
		}
		timer.Reset(next)
	}
}
