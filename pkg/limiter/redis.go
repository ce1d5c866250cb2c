package limiter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const windowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

const evalTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Window counts hits per key in a fixed Redis-backed window. It fails open
// when Redis is unavailable.
type Window struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

func NewWindow(client redis.UniversalClient, prefix string, window time.Duration, max int) *Window {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}

	w := &Window{
		window: window,
		max:    max,
		prefix: prefix,
	}
	if client != nil {
		w.client = client
	}

	return w
}

func (w *Window) Allow(ctx context.Context, key string) bool {
	if w == nil || w.client == nil {
		return true
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	seconds := int(w.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	count, err := w.client.Eval(ctx, windowScript, []string{w.prefix + key}, seconds).Int()
	if err != nil {
		return true
	}

	return count <= w.max
}

// LimitByIP rejects requests once the client IP exhausts the window.
func LimitByIP(w *Window) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !w.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}

		c.Next()
	}
}
