package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"productivity-tracker/backend/internal/cache"
	"productivity-tracker/backend/internal/config"
	"productivity-tracker/backend/internal/handlers"
	"productivity-tracker/backend/internal/middleware"
	"productivity-tracker/backend/internal/notify"
	"productivity-tracker/backend/internal/services"
	"productivity-tracker/backend/internal/storage"
	"productivity-tracker/backend/internal/store"
	"productivity-tracker/backend/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	entityStore, err := store.Open(st)
	if err != nil {
		return err
	}
	log.Printf("storage ready (driver=%s)", cfg.Database.Driver)

	taskService := services.NewTaskService(entityStore)
	habitService := services.NewHabitService(entityStore)
	goalService := services.NewGoalService(entityStore)
	analyticsService := services.NewAnalyticsService(entityStore)

	var snapshots handlers.SnapshotProvider = analyticsService
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		defer redisClient.Close()

		redisCache := cache.NewRedisCacheWithClient(redisClient)
		if err := redisCache.Health(); err != nil {
			log.Printf("redis unreachable, running without cache: %v", err)
		} else {
			snapshots = services.NewCachedAnalyticsService(analyticsService, entityStore, redisCache)
			log.Printf("analytics cache enabled (redis=%s)", cfg.GetRedisAddr())
		}
	}

	var reminders *notify.ReminderScheduler
	if cfg.Notifications.Enabled && redisClient != nil {
		queue := worker.NewJobQueue(redisClient)
		reminders = notify.NewReminderScheduler(taskService, queue, notify.Config{
			WindowHours: cfg.Notifications.WindowHours,
			ResendAfter: cfg.Notifications.ResendAfter,
			Schedule:    cfg.Notifications.Schedule,
		})
		if err := reminders.Start(); err != nil {
			return err
		}
		defer reminders.Stop()
		log.Printf("reminder scheduler started (schedule=%s)", cfg.Notifications.Schedule)
	}

	routerCfg := handlers.RouterConfig{
		Tasks:     handlers.NewTaskHandler(taskService),
		Habits:    handlers.NewHabitHandler(habitService),
		Goals:     handlers.NewGoalHandler(goalService),
		Analytics: handlers.NewAnalyticsHandler(snapshots),
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		defer limiter.Stop()
		routerCfg.RateLimit = limiter.Middleware()
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Database.Driver == "memory" {
		return storage.NewMemory(), nil
	}
	return storage.Open(cfg.Database.Driver, cfg.GetDatabaseDSN())
}
