package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskr/internal/infrastructure/audit"
)

// JanitorConfig controls how often and how aggressively the audit trail is pruned.
type JanitorConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// AuditJanitor drops audit entries past their retention window on a schedule.
type AuditJanitor struct {
	store  *audit.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    JanitorConfig
	now    func() time.Time
}

func NewAuditJanitor(store *audit.Store, logger *zap.Logger, cfg JanitorConfig) *AuditJanitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &AuditJanitor{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
		now:    time.Now,
	}

	// cron.Every rounds sub-second intervals up to one second.
	j.cron.Schedule(cron.Every(cfg.Interval), cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error("audit cleanup failed", zap.Error(err))
		}
	}))

	return j
}

// Start launches the cron scheduler.
func (j *AuditJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("audit janitor started", zap.Duration("interval", j.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (j *AuditJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("audit janitor stopped")
}

// Sweep removes expired entries synchronously.
func (j *AuditJanitor) Sweep(ctx context.Context) (int, error) {
	if j == nil || j.store == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := j.store.Cleanup(j.now().Add(-j.cfg.Retention))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		j.logger.Info("audit entries pruned", zap.Int("removed", removed))
	}
	return removed, nil
}
