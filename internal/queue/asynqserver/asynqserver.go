package asynqserver

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/vibe-gaming/passwordless/internal/cache"
	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/queue/processor"
	"github.com/vibe-gaming/passwordless/internal/queue/task"
	"github.com/vibe-gaming/passwordless/internal/worker"
)

func New(cfg config.Cache, workerCfg config.WorkerConfig, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: workerCfg.Concurrency,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

// NewScheduler enqueues the periodic sweep. Run it in a single process only.
func NewScheduler(cfg config.Cache, workerCfg config.WorkerConfig) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOptions(cfg), &asynq.SchedulerOpts{LogLevel: asynq.ErrorLevel})

	if _, err := scheduler.Register(workerCfg.SweepCron, task.NewSweepExpiredTask()); err != nil {
		return nil, fmt.Errorf("register sweep task failed: %w", err)
	}

	return scheduler, nil
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses, Password: cfg.RedisCluster.Password}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address, Password: cfg.Redis.Password}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendWelcomeEmailTaskName, processor.NewSendWelcomeEmailProcessor(workers))
	mux.Handle(task.SweepExpiredTaskName, processor.NewSweepExpiredProcessor(workers))
	queues := map[string]int{
		task.EmailQueueName:       3,
		task.MaintenanceQueueName: 1,
	}
	return mux, queues
}
