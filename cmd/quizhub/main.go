package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizhub/internal/bootstrap"
	"quizhub/internal/cache"
	"quizhub/internal/config"
	cronpkg "quizhub/internal/cron"
	"quizhub/internal/jobs"
	"quizhub/internal/mailer"
	"quizhub/internal/repository"
	"quizhub/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db, &cfg.Admin); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Cache (Redis with in-memory fallback) ---
	cacheStore := cache.NewMemoryStore()
	cacheRedis := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Pass,
		DB:       cfg.Redis.CacheDB,
	})
	if err := pingRedis(cacheRedis); err != nil {
		logger.Warn("Redis unavailable for cache, using in-memory fallback", zap.Error(err))
	} else {
		cacheStore = cache.NewRedisStore(cacheRedis)
	}
	cacheClient := cache.New(cacheStore, logger)

	// --- Job broker (Redis with in-memory fallback) ---
	var broker jobs.Broker
	queueRedis := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Pass,
		DB:       cfg.Redis.QueueDB,
	})
	if err := pingRedis(queueRedis); err != nil {
		logger.Warn("Redis unavailable for job queue, handles will be process-local", zap.Error(err))
		broker = jobs.NewMemoryBroker()
	} else {
		broker = jobs.NewRedisBroker(queueRedis, cfg.Jobs.Retention)
	}
	queue := jobs.NewQueue(broker)

	// --- Job handlers + worker pool ---
	scoreRepo := repository.NewScoreRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	userRepo := repository.NewUserRepository(db)

	exporter := jobs.NewExporter(scoreRepo, quizRepo, cfg.Export.Dir)
	notifier := jobs.NewNotifier(userRepo, scoreRepo, quizRepo, mailer.New(&cfg.SMTP), cfg.Export.Dir, logger)

	pool := jobs.NewPool(broker, cfg.Jobs.Workers, logger)
	pool.Register(jobs.KindUserExport, exporter.UserExport)
	pool.Register(jobs.KindAllExport, exporter.AllExport)
	pool.Register(jobs.KindDailyReminder, notifier.DailyReminder)
	pool.Register(jobs.KindMonthlyReport, notifier.MonthlyReport)
	pool.Start()

	// --- Cron Dispatcher ---
	dispatcher := cronpkg.New(queue, cronpkg.Schedule(&cfg.Schedule), logger)
	if err := dispatcher.Start(); err != nil {
		logger.Fatal("Failed to start cron dispatcher", zap.Error(err))
	}

	// --- Echo + Routes ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, db, cacheClient, queue, cfg, logger)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting Quizhub server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron first so nothing new is enqueued.
	cronCtx := dispatcher.Stop()
	<-cronCtx.Done()

	// Drain in-flight jobs.
	pool.Stop()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	cacheRedis.Close()
	queueRedis.Close()

	logger.Info("Server exited")
}

func pingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
