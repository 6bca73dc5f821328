// cmd/tradeboard-api/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tradeboard/internal/common/config"
	"tradeboard/internal/common/database"
	"tradeboard/internal/common/logger"
	"tradeboard/internal/httpapi"
	"tradeboard/internal/notify"
	"tradeboard/internal/posting"
	"tradeboard/internal/search"
	"tradeboard/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting tradeboard API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init the native store, selected by driver ---
	var (
		jobStore store.Store
		closers  []func() error
	)
	switch cfg.Database.Driver {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		closers = append(closers, pg.Close)
		jobStore = store.NewPostgres(pg.GetDB())
		zapLog.Info("PostgreSQL connected successfully")

	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		jobStore = store.NewElastic(esClient.Client, cfg.Database.Elasticsearch.Index)
		zapLog.Info("Elasticsearch connected successfully")

	case "memory":
		jobStore = store.NewMemory()
		zapLog.Warn("Using in-memory store; data will not survive restarts")

	default:
		zapLog.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
	}

	// --- Init Redis session store (optional) ---
	var sessions *search.SessionStore
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, redis.Close)
		sessions = search.NewSessionStore(
			redis.GetClient(),
			time.Duration(cfg.Search.SessionTTL)*time.Second,
		)
		zapLog.Info("Redis connected successfully, session persistence enabled")
	}

	// --- Init confirmation email sender (optional) ---
	var sender notify.Sender
	if cfg.Notifications.Email.Enabled {
		ses, err := notify.NewSESSender(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sender = ses
		zapLog.Info("SES confirmation emails enabled")
	}

	limits := search.Limits{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}
	postings := posting.NewService(jobStore, posting.NewNormalizer(cfg.Posting.InitialLeadQuota), sender, log)
	searchSvc := search.NewService(jobStore, limits, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	})
	httpapi.NewHandler(postings, searchSvc, jobStore, sessions, limits, log).Register(app)

	go func() {
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()
	zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Millisecond
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			zapLog.Error("close failed", zap.Error(err))
		}
	}
	zapLog.Info("Tradeboard API stopped gracefully")
}
