package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweepdreams/curbside-notifications/internal/observability/tracing"
)

const lockKey = "sweep:run_lock"

// ErrAlreadyLocked means another worker instance holds the run lock.
var ErrAlreadyLocked = errors.New("another notification run holds the lock")

// releaseScript deletes the lock only when the stored token matches, so a
// slow run cannot release a lock a newer run has since acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock serializes notification runs across worker instances. The TTL bounds
// how long a crashed worker blocks the next run.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Lock{
		client: client,
		key:    lockKey,
		ttl:    ttl,
	}
}

// Acquire takes the lock for the given run token and returns its release
// function. Returns ErrAlreadyLocked when another run is in flight.
func (l *Lock) Acquire(ctx context.Context, token string) (func(context.Context) error, error) {
	ctx, span := tracing.StartRedisOperationSpan(ctx, "set_nx", l.key)
	defer span.End()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyLocked
	}

	release := func(ctx context.Context) error {
		ctx, span := tracing.StartRedisOperationSpan(ctx, "release", l.key)
		defer span.End()

		deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release run lock: %w", err)
		}
		if deleted == 0 {
			slog.WarnContext(ctx, "run lock expired before release",
				slog.String("key", l.key),
				slog.String("token", token),
			)
		}
		return nil
	}

	return release, nil
}
