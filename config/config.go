package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	Port     string
	GinMode  string
	Location *time.Location

	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTAdminSecret    string
	JWTCustomerSecret string
	JWTTTL            time.Duration
	BcryptCost        int

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SlotLockTTL   time.Duration

	RabbitMQURL         string
	QueueEventsExchange string
	QueueEventsConsumer bool

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string

	QueueNoMaxAttempts int
}

// Load membaca konfigurasi dari environment (setelah godotenv.Load di main).
func Load() (*Config, error) {
	loc, err := time.LoadLocation(envStr("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, err
	}

	dsn := envStr("DB_DSN", "")
	if dsn == "" {
		dsn = envStr("DATABASE_URL", "")
	}

	return &Config{
		AppEnv:   envStr("APP_ENV", "development"),
		Port:     envStr("PORT", "8080"),
		GinMode:  envStr("GIN_MODE", "debug"),
		Location: loc,

		DBDriver:       strings.ToLower(envStr("DB_DRIVER", "sqlite")),
		DBDSN:          dsn,
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 5),

		JWTAdminSecret:    envStr("JWT_ADMIN_SECRET", ""),
		JWTCustomerSecret: envStr("JWT_CUSTOMER_SECRET", ""),
		JWTTTL:            envDur("JWT_TTL", 24*time.Hour),
		BcryptCost:        envInt("BCRYPT_COST", 10),

		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 50),
		CORSOrigins:    envList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		RedisAddr:     envStr("REDIS_ADDR", ""),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		SlotLockTTL:   envDur("SLOT_LOCK_TTL", 5*time.Second),

		RabbitMQURL:         envStr("RABBITMQ_URL", ""),
		QueueEventsExchange: envStr("QUEUE_EVENTS_EXCHANGE", "queueease.events"),
		QueueEventsConsumer: envBool("QUEUE_EVENTS_CONSUMER", false),

		S3Endpoint:      envStr("S3_ENDPOINT", ""),
		S3Region:        envStr("S3_REGION", "auto"),
		S3AccessKey:     envStr("S3_ACCESS_KEY", ""),
		S3SecretKey:     envStr("S3_SECRET_KEY", ""),
		S3Bucket:        envStr("S3_BUCKET", ""),
		S3PublicBaseURL: envStr("S3_PUBLIC_BASE_URL", ""),

		QueueNoMaxAttempts: envInt("QUEUE_NO_MAX_ATTEMPTS", 10),
	}, nil
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
