package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLockoutSweep clears expired login lockouts so the counters do not
	// linger on rows nobody logs into again.
	TaskLockoutSweep = "auth:lockout_sweep"
)

// NewLockoutSweepTask constructs the periodic lockout sweep task. It carries
// no payload.
func NewLockoutSweepTask() *asynq.Task {
	return asynq.NewTask(TaskLockoutSweep, nil)
}
