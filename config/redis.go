package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/queueease/utils"
)

// NewRedisClient mengembalikan nil bila Redis tidak dikonfigurasi atau tidak bisa di-ping;
// pemanggil turun ke lock dan blacklist in-process.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Printf("Redis not reachable at %s, using in-process locks: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}
	utils.InfoLogger.Printf("Connected to redis at %s", cfg.RedisAddr)
	return client
}
