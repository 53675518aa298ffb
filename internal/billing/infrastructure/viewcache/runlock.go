package viewcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// RunLockKey is the Redis key guarding the billing run.
const RunLockKey = "legasync:lock:billing-run"

// releaseScript deletes the lock only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lock only when it still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisRunLock serialises billing runs across processes with SET NX.
// While held, the lock is renewed to its full ttl every third of the ttl,
// so a run longer than ttl keeps it. ttl only bounds how long a crashed
// holder blocks the next run.
type RedisRunLock struct {
	client     *redis.Client
	key        string
	renewEvery time.Duration
}

var _ domain.RunLock = (*RedisRunLock)(nil)

// NewRedisRunLock creates a lock stored under RunLockKey.
func NewRedisRunLock(client *redis.Client) *RedisRunLock {
	return &RedisRunLock{client: client, key: RunLockKey}
}

// Acquire takes the lock and keeps renewing it until release is called.
func (l *RedisRunLock) Acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	// The caller's context may already be gone when the run finishes.
	ctx = context.WithoutCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(ctx, token, ttl, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			releaseCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err()
		})
	}, nil
}

func (l *RedisRunLock) renew(ctx context.Context, token string, ttl time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	every := l.renewEvery
	if every <= 0 {
		every = ttl / 3
	}
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			renewCtx, cancel := context.WithTimeout(ctx, every)
			held, err := renewScript.Run(renewCtx, l.client, []string{l.key}, token, ttl.Milliseconds()).Int()
			cancel()
			// Another holder took over after expiry.
			if err == nil && held == 0 {
				return
			}
		}
	}
}

// LocalRunLock serialises runs within one process.
type LocalRunLock struct {
	mu sync.Mutex
}

var _ domain.RunLock = (*LocalRunLock)(nil)

// Acquire fails immediately when another run is in flight. ttl is ignored.
func (l *LocalRunLock) Acquire(_ context.Context, _ time.Duration) (func(), error) {
	if !l.mu.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
