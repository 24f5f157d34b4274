package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/queueease/utils"
)

// Locker serialises allocation per key (restaurant+slot, restaurant waitlist).
// The unique slot key on queues remains the hard guarantee; the lock only
// keeps concurrent requests from racing into that constraint.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func slotLockKey(restaurantID uint, slot time.Time) string {
	return fmt.Sprintf("queueease:lock:slot:%d:%d", restaurantID, slot.UTC().Unix())
}

func waitlistLockKey(restaurantID uint) string {
	return fmt.Sprintf("queueease:lock:waitlist:%d", restaurantID)
}

// LocalLocker -> lock per key di dalam satu proses
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.drop(key, kl)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker -> SET NX PX dengan token, dilepas hanya oleh pemiliknya
type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, retryDelay: 50 * time.Millisecond}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := randomToken()
	if err != nil {
		return nil, utils.Internal(err)
	}

	deadline := time.Now().Add(r.ttl)
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, utils.Internal(fmt.Errorf("acquire lock %s: %w", key, err))
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, utils.Conflict("Another request is being processed for this slot, please retry")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}

	return func() {
		// context terpisah supaya lock tetap dilepas walau request dibatalkan
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.client, []string{key}, token).Err(); err != nil {
			utils.ErrorLogger.Printf("release lock %s: %v", key, err)
		}
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
