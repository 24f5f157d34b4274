package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist menyimpan token yang sudah logout sampai masa berlakunya habis.
type TokenBlacklist interface {
	Add(token string, ttl time.Duration)
	Contains(token string) bool
}

var blacklist TokenBlacklist = NewMemoryBlacklist()

func SetTokenBlacklist(b TokenBlacklist) {
	if b != nil {
		blacklist = b
	}
}

func BlacklistToken(token string) {
	blacklist.Add(token, TokenTTL)
}

func IsTokenBlacklisted(token string) bool {
	return blacklist.Contains(token)
}

type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (m *MemoryBlacklist) Add(token string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	// bersihkan token kadaluarsa sekalian
	for t, exp := range m.tokens {
		if now.After(exp) {
			delete(m.tokens, t)
		}
	}
	m.tokens[token] = now.Add(ttl)
}

func (m *MemoryBlacklist) Contains(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.tokens[token]
	return ok && time.Now().Before(exp)
}

// RedisBlacklist berbagi blacklist antar instance.
type RedisBlacklist struct {
	client *redis.Client
	prefix string
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client, prefix: "queueease:blacklist:"}
}

func (r *RedisBlacklist) Add(token string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+token, 1, ttl).Err(); err != nil && ErrorLogger != nil {
		ErrorLogger.Errorf("blacklist token in redis: %v", err)
	}
}

func (r *RedisBlacklist) Contains(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := r.client.Exists(ctx, r.prefix+token).Result()
	if err != nil {
		if ErrorLogger != nil {
			ErrorLogger.Errorf("check token blacklist in redis: %v", err)
		}
		return false
	}
	return n > 0
}
