package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/vinyldesk/vinyldesk/internal/jobs"
)

// LockoutSweepJob resets the retry counter on accounts whose lockout window
// has already elapsed. Login itself also treats an expired window as clear;
// the sweep just keeps the table tidy and the metric honest.
type LockoutSweepJob struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLockoutSweepJob constructs the job.
func NewLockoutSweepJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LockoutSweepJob {
	return &LockoutSweepJob{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskLockoutSweep tasks.
func (j *LockoutSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("lockout_sweep")
	tag, err := j.pool.Exec(ctx,
		`UPDATE users
		 SET login_retry_count = 0, locked_until = NULL, updated_at = now()
		 WHERE locked_until IS NOT NULL AND locked_until < now()`)
	if err != nil {
		j.logger.Error("lockout sweep", slog.Any("error", err))
		return tracker.End(err)
	}
	if n := tag.RowsAffected(); n > 0 {
		j.metrics.AddUnlocked(n)
		j.logger.Info("lockout sweep released accounts", slog.Int64("count", n))
	}
	return tracker.End(nil)
}
