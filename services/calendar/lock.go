package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"maisonette/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnitLocker serialises check-then-write sequences on one unit's calendar.
type UnitLocker interface {
	// Lock blocks until the unit is held or ctx is done. The returned
	// function releases it.
	Lock(ctx context.Context, unitID string) (func(), error)
}

// WithUnitLock runs fn while holding the unit's lock.
func WithUnitLock(ctx context.Context, locker UnitLocker, unitID string, fn func(ctx context.Context) error) error {
	unlock, err := locker.Lock(ctx, unitID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// errBusy is returned when a lock cannot be taken in time.
func errBusy(unitID string, cause error) error {
	return &utils.AppError{
		Kind:    utils.KindConflict,
		Message: "calendar is busy, please retry",
		Err:     fmt.Errorf("unit %s: %w", unitID, cause),
	}
}

type unitLock struct {
	ch   chan struct{}
	refs int
}

// MemoryUnitLocker is a keyed mutex for a single process.
type MemoryUnitLocker struct {
	mu    sync.Mutex
	locks map[string]*unitLock
}

func NewMemoryUnitLocker() *MemoryUnitLocker {
	return &MemoryUnitLocker{locks: map[string]*unitLock{}}
}

func (l *MemoryUnitLocker) Lock(ctx context.Context, unitID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[unitID]
	if !ok {
		entry = &unitLock{ch: make(chan struct{}, 1)}
		l.locks[unitID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.ch
				l.release(unitID, entry)
			})
		}, nil
	case <-ctx.Done():
		l.release(unitID, entry)
		return nil, errBusy(unitID, ctx.Err())
	}
}

func (l *MemoryUnitLocker) release(unitID string, entry *unitLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, unitID)
	}
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisUnitLocker shares unit locks between processes through Redis
// SET NX PX. A lock expires after TTL even if its holder dies.
type RedisUnitLocker struct {
	Client        *redis.Client
	TTL           time.Duration
	RetryInterval time.Duration
	Logger        *zap.Logger
}

func NewRedisUnitLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisUnitLocker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisUnitLocker{Client: client, TTL: ttl, RetryInterval: 50 * time.Millisecond, Logger: logger}
}

func lockKey(unitID string) string {
	return "lock:unit:" + unitID
}

func (l *RedisUnitLocker) Lock(ctx context.Context, unitID string) (func(), error) {
	key := lockKey(unitID)
	token := uuid.NewString()

	// Never wait longer than a holder may keep the lock.
	waitCtx, cancel := context.WithTimeout(ctx, l.TTL)
	defer cancel()

	ticker := time.NewTicker(l.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(waitCtx, key, token, l.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("calendar: acquire lock on unit %s: %w", unitID, err)
		}
		if ok {
			return func() { l.unlock(key, token) }, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, errBusy(unitID, waitCtx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisUnitLocker) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.Logger.Warn("failed to release unit lock", zap.String("key", key), zap.Error(err))
	}
}
