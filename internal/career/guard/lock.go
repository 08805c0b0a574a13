// Package guard keeps two workers from driving the same form session at once.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"career-predictor/internal/common/errors"
)

const (
	DefaultTTL    = 30 * time.Second
	DefaultPrefix = "career:session:"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseFunc gives the lock back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

type Lock struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	Token  func() string
}

// NewLock uses SET NX PX keys under prefix; ttl bounds how long a crashed
// holder can block a session.
func NewLock(client redis.Cmdable, prefix string, ttl time.Duration) *Lock {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		Token:  uuid.NewString,
	}
}

func (l *Lock) key(sessionID string) string {
	return l.prefix + sessionID
}

// Acquire claims sessionID or fails with SESSION_LOCKED.
func (l *Lock) Acquire(ctx context.Context, sessionID string) (ReleaseFunc, error) {
	if sessionID == "" {
		return nil, errors.NewInvalidInputError("sessionId is required")
	}

	key := l.key(sessionID)
	token := l.Token()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, errors.NewExternalServiceError("redis", fmt.Errorf("acquire %s: %w", key, err))
	}
	if !ok {
		return nil, errors.NewSessionLockedError(sessionID)
	}

	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}, nil
}
