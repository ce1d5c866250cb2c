package client

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the API process needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ctxKey struct{}

var (
	mu      sync.RWMutex
	current Enqueuer
)

// WithClient scopes e to ctx; it takes precedence over the process-wide client.
func WithClient(ctx context.Context, e Enqueuer) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// GetClient returns the enqueuer scoped to ctx or, failing that, the one set
// with SetClient. Nil when neither is configured.
func GetClient(ctx context.Context) Enqueuer {
	if e, ok := ctx.Value(ctxKey{}).(Enqueuer); ok && e != nil {
		return e
	}

	mu.RLock()
	defer mu.RUnlock()

	return current
}

// SetClient installs e as the process-wide enqueuer and returns a func that
// puts the previous one back.
func SetClient(e Enqueuer) (restore func()) {
	mu.Lock()
	prev := current
	current = e
	mu.Unlock()

	return func() { SetClient(prev) }
}
