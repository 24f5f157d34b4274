package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/queueease/config"
	"github.com/yeremiapane/queueease/controllers"
	"github.com/yeremiapane/queueease/database"
	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/kds"
	"github.com/yeremiapane/queueease/router"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/storage"
	"github.com/yeremiapane/queueease/utils"
)

func init() {
	utils.InitLogger()

	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Printf("Warning: .env file not found or error loading: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTAdminSecret == "" || cfg.JWTCustomerSecret == "" {
		utils.ErrorLogger.Warn("JWT secrets are not set, using development defaults")
	}
	utils.SetJWTConfig(cfg.JWTAdminSecret, cfg.JWTCustomerSecret, cfg.JWTTTL)
	utils.BcryptCost = cfg.BcryptCost

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	utils.InfoLogger.Println("Migration completed.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis -> lock slot terdistribusi dan blacklist token
	var locker services.Locker = services.NewLocalLocker()
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		defer rdb.Close()
		locker = services.NewRedisLocker(rdb, cfg.SlotLockTTL)
		utils.SetTokenBlacklist(utils.NewRedisBlacklist(rdb))
	}

	// Event domain -> dashboard websocket, dan RabbitMQ bila dikonfigurasi
	publisher := events.Multi{kds.Publisher{}}
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.QueueEventsExchange)
		if err != nil {
			utils.ErrorLogger.Printf("RabbitMQ unavailable, events stay local: %v", err)
		} else {
			defer amqpPub.Close()
			publisher = append(publisher, amqpPub)
		}
		if cfg.QueueEventsConsumer {
			go func() {
				if err := events.StartConsumer(ctx, cfg.RabbitMQURL, cfg.QueueEventsExchange, events.LogHandler); err != nil && !errors.Is(err, context.Canceled) {
					utils.ErrorLogger.Printf("event consumer stopped: %v", err)
				}
			}()
		}
	}

	var uploader controllers.FileUploader
	if cfg.StorageEnabled() {
		s3Uploader, err := storage.NewS3Uploader(ctx, storage.Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			utils.ErrorLogger.Printf("Object storage disabled: %v", err)
		} else {
			uploader = s3Uploader
		}
	}

	engine := services.NewQueueEngine(db, locker, publisher, cfg.Location)
	engine.MaxQueueNoAttempts = cfg.QueueNoMaxAttempts
	orders := services.NewOrderService(db, publisher)

	monitor := services.NewFloorMonitor(db, cfg.Location)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Deps{
		DB:             db,
		Engine:         engine,
		Orders:         orders,
		Monitor:        monitor,
		Uploader:       uploader,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Production:     cfg.AppEnv == "production",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown: %v", err)
	}
}
