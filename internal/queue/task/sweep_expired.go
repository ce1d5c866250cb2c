package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	SweepExpiredTaskName   = "sweep:expired"
	MaintenanceQueueName   = "maintenance"
	sweepExpiredTimeout    = time.Minute
	sweepExpiredUniqueness = 5 * time.Minute
)

// NewSweepExpiredTask has no payload. Overlapping sweeps are collapsed by
// the uniqueness lock.
func NewSweepExpiredTask() *asynq.Task {
	return asynq.NewTask(
		SweepExpiredTaskName,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(MaintenanceQueueName),
		asynq.Timeout(sweepExpiredTimeout),
		asynq.Unique(sweepExpiredUniqueness),
	)
}
