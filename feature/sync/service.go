package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"equipment-inventory/core/broker"
	"equipment-inventory/core/reconcile"
	"equipment-inventory/core/retry"
	"equipment-inventory/feature/equipment"
	"equipment-inventory/feature/equipment/models"

	"go.uber.org/zap"
)

// ErrSyncDisabled is returned when no remote store is configured or sync is turned off.
var ErrSyncDisabled = errors.New("synchronization is disabled")

var _ reconcile.Record = (*models.Equipment)(nil)

// Outcome is the result of a pass as exposed to API clients and the CLI.
type Outcome struct {
	*reconcile.Report
	ChangeLog   []string  `json:"change_log"`
	LocalTotal  int       `json:"local_total"`
	RemoteTotal int       `json:"remote_total"`
	InSync      bool      `json:"in_sync"`
	Shared      bool      `json:"shared"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Service runs synchronization passes between the local and the remote store.
type Service struct {
	cfg       Config
	local     *equipment.Store
	remote    *equipment.Store
	coord     *reconcile.Coordinator[*models.Equipment]
	publisher broker.Publisher
	metrics   *Metrics
	logger    *zap.Logger
	bg        gosync.WaitGroup
}

// NewService creates the service. When remote is nil or cfg.Enabled is false,
// every run fails with ErrSyncDisabled.
func NewService(local, remote *equipment.Store, cfg Config, publisher broker.Publisher, metrics *Metrics, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = broker.Nop{}
	}
	s := &Service{
		cfg:       cfg,
		local:     local,
		remote:    remote,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
	if cfg.Enabled && local != nil && remote != nil {
		engine := reconcile.NewEngine[*models.Equipment](Endpoint(local), Endpoint(remote))
		s.coord = reconcile.NewCoordinator[*models.Equipment](&observedRunner{engine: engine, svc: s})
	}
	return s
}

// Endpoint exposes a store to the reconcile engine: snapshots are full reads
// and writes save the record with its specifications in one transaction.
func Endpoint(store *equipment.Store) reconcile.Endpoint[*models.Equipment] {
	return reconcile.EndpointFuncs[*models.Equipment]{
		SnapshotFunc: store.ReadAll,
		ApplyFunc:    store.Save,
	}
}

// Enabled reports whether passes can run.
func (s *Service) Enabled() bool {
	return s.coord != nil
}

// Running reports whether a pass is in flight.
func (s *Service) Running() bool {
	return s.coord != nil && s.coord.Running()
}

// Run performs one pass, or joins the pass in flight.
func (s *Service) Run(ctx context.Context, opts reconcile.Options) (*Outcome, error) {
	if s.coord == nil {
		return nil, ErrSyncDisabled
	}
	res, shared, err := s.coord.Run(ctx, opts)
	return newOutcome(res, shared), err
}

// RunWithRetry runs whole passes until one succeeds or attempts are exhausted,
// waiting with exponential backoff in between.
func (s *Service) RunWithRetry(ctx context.Context, opts reconcile.Options, attempts int) (*Outcome, error) {
	if s.coord == nil {
		return nil, ErrSyncDisabled
	}

	var out *Outcome
	backoff := retry.NewBackoff(s.cfg.RetryMin(), s.cfg.RetryMax(), 2)
	err := retry.Do(ctx, attempts, backoff, func(attempt int) error {
		var err error
		out, err = s.Run(ctx, opts)
		if err != nil && attempt < attempts {
			s.logger.Warn("Sync pass failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
		}
		return err
	})
	return out, err
}

// Trigger starts a pass in the background and returns immediately. The returned
// channel receives the pass error (nil on success) and is then closed.
func (s *Service) Trigger(ctx context.Context, reason string) <-chan error {
	done := make(chan error, 1)
	if s.coord == nil {
		done <- ErrSyncDisabled
		close(done)
		return done
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer close(done)
		s.logger.Debug("Sync triggered", zap.String("reason", reason))
		_, err := s.RunWithRetry(ctx, reconcile.Options{}, s.cfg.MaxAttempts)
		if err != nil {
			s.logger.Error("Triggered sync failed", zap.String("reason", reason), zap.Error(err))
		}
		done <- err
	}()
	return done
}

// Wait blocks until every triggered pass has returned or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WriteLocker returns the lock local writers hold so no pass runs meanwhile,
// or nil when sync is disabled.
func (s *Service) WriteLocker() gosync.Locker {
	if s.coord == nil {
		return nil
	}
	return s.coord.WriteLocker()
}

// Last returns the outcome of the latest pass, or nil before the first one.
func (s *Service) Last() *Outcome {
	if s.coord == nil {
		return nil
	}
	res, _ := s.coord.Last()
	return newOutcome(res, false)
}

// observe logs, counts and publishes one pass.
func (s *Service) observe(ctx context.Context, res *reconcile.Result[*models.Equipment], err error) {
	var report *reconcile.Report
	if res != nil {
		report = res.Report
	}
	s.metrics.Observe(report, err)

	if err != nil {
		s.logger.Error("Sync pass failed", zap.Error(err))
	}
	if report == nil {
		s.publish(ctx, "failed", map[string]string{"error": err.Error()})
		return
	}

	fields := []zap.Field{
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
		zap.Int("conflicts_real", report.ConflictsReal),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int64("elapsed_ms", report.ElapsedMS),
		zap.Bool("dry_run", report.DryRun),
	}
	if err == nil {
		fields = append(fields,
			zap.Int("local_total", len(res.LocalFinal)),
			zap.Int("remote_total", len(res.RemoteFinal)),
		)
	}
	s.logger.Info("Sync pass finished", fields...)

	for _, line := range report.ChangeLog() {
		s.logger.Debug(line)
	}
	for _, skip := range report.Skipped {
		s.logger.Warn("Record skipped", zap.String("side", string(skip.Side)),
			zap.String("id", skip.Key), zap.String("reason", skip.Reason))
	}

	if err == nil && !report.DryRun && !InSync(res.LocalFinal, res.RemoteFinal) {
		s.logger.Warn("Stores differ after sync",
			zap.Int("local_total", len(res.LocalFinal)),
			zap.Int("remote_total", len(res.RemoteFinal)),
		)
	}

	if report.DryRun {
		return
	}
	kind := "completed"
	if err != nil {
		kind = "failed"
	}
	s.publish(ctx, kind, newOutcome(res, false))
}

func (s *Service) publish(ctx context.Context, kind string, body any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	event := broker.Event{Kind: kind, CorrelationID: "sync-" + time.Now().UTC().Format("20060102T150405.000"), Body: body}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish sync report", zap.Error(err))
	}
}

// observedRunner reports every pass the coordinator actually runs, once.
type observedRunner struct {
	engine *reconcile.Engine[*models.Equipment]
	svc    *Service
}

func (r *observedRunner) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Result[*models.Equipment], error) {
	res, err := r.engine.Run(ctx, opts)
	r.svc.observe(ctx, res, err)
	return res, err
}

func newOutcome(res *reconcile.Result[*models.Equipment], shared bool) *Outcome {
	if res == nil || res.Report == nil {
		return nil
	}
	return &Outcome{
		Report:      res.Report,
		ChangeLog:   res.Report.ChangeLog(),
		LocalTotal:  len(res.LocalFinal),
		RemoteTotal: len(res.RemoteFinal),
		InSync:      res.Report.Error == "" && InSync(res.LocalFinal, res.RemoteFinal),
		Shared:      shared,
		FinishedAt:  res.Report.StartedAt.Add(time.Duration(res.Report.ElapsedMS) * time.Millisecond),
	}
}

// InSync reports whether both lists hold the same records with the same
// content and timestamps, regardless of order.
func InSync(local, remote []*models.Equipment) bool {
	if len(local) != len(remote) {
		return false
	}
	byID := make(map[string]*models.Equipment, len(local))
	for _, l := range local {
		byID[l.ID] = l
	}
	for _, r := range remote {
		l, ok := byID[r.ID]
		if !ok || l.Fingerprint() != r.Fingerprint() || !l.UpdatedAt.Equal(r.UpdatedAt) {
			return false
		}
	}
	return true
}
