package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/academic-record-api/pkg/errors"
)

const (
	studentLockPrefix  = "academic:lock:student:"
	studentLockBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// StudentLockRepository serialises writers for the same student across
// processes using Redis. A nil client turns every lock into a no-op.
type StudentLockRepository struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewStudentLockRepository constructs the lock repository.
func NewStudentLockRepository(client *redis.Client, ttl, wait time.Duration) *StudentLockRepository {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &StudentLockRepository{client: client, ttl: ttl, wait: wait}
}

// Acquire blocks until the student's lock is held or the wait budget runs out,
// returning a release func. Timing out yields appErrors.ErrLockTimeout.
func (r *StudentLockRepository) Acquire(ctx context.Context, padron int64) (func(), error) {
	if r == nil || r.client == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("%s%d", studentLockPrefix, padron)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// release must survive a cancelled request context
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, appErrors.Clone(appErrors.ErrLockTimeout, fmt.Sprintf("student %d is locked by another writer", padron))
		}

		timer := time.NewTimer(studentLockBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(appErrors.ErrLockTimeout, ctx.Err())
		case <-timer.C:
		}
	}
}
