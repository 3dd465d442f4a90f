package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-schedule-api/api/swagger"
	"github.com/noah-isme/class-schedule-api/internal/handler"
	"github.com/noah-isme/class-schedule-api/internal/repository"
	"github.com/noah-isme/class-schedule-api/internal/router"
	"github.com/noah-isme/class-schedule-api/internal/scheduler"
	"github.com/noah-isme/class-schedule-api/internal/service"
	"github.com/noah-isme/class-schedule-api/pkg/cache"
	"github.com/noah-isme/class-schedule-api/pkg/config"
	"github.com/noah-isme/class-schedule-api/pkg/database"
	"github.com/noah-isme/class-schedule-api/pkg/events"
	"github.com/noah-isme/class-schedule-api/pkg/jobs"
	"github.com/noah-isme/class-schedule-api/pkg/logger"
)

// @title Class Schedule API
// @version 1.0.0
// @description Timetable generation for university batches, semesters and sections
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
	} else {
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close()
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.TimetableCacheTTL, logr, cacheRepo != nil)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewAMQPPublisher(cfg.Events.URL, logr)
	}
	defer publisher.Close()

	store := repository.NewEntityStore(db)
	schedules := repository.NewScheduleRepository(db)
	engine := scheduler.NewEngine(store, logr)
	orchestrator := scheduler.NewOrchestrator(engine, store, logr)

	validate := validator.New()
	scheduleSvc := service.NewScheduleService(schedules, store, engine, orchestrator, publisher, cacheSvc, metrics, validate, logr, service.ScheduleServiceConfig{
		Days:           cfg.Scheduler.Days,
		Morning:        scheduler.ShiftWindow{Start: cfg.Scheduler.Morning.Start, End: cfg.Scheduler.Morning.End},
		Afternoon:      scheduler.ShiftWindow{Start: cfg.Scheduler.Afternoon.Start, End: cfg.Scheduler.Afternoon.End},
		PeriodsPerDay:  cfg.Scheduler.PeriodsPerDay,
		TimetableTTL:   cfg.Scheduler.TimetableCacheTTL,
		JobTTL:         cfg.Scheduler.JobTTL,
		GeneratedQueue: cfg.Events.GeneratedQueue,
		PublishedQueue: cfg.Events.PublishedQueue,
	})
	courseSvc := service.NewCourseService(store, store, validate, logr)
	exportSvc := service.NewExportService(schedules, store, logr)

	queue := jobs.NewQueue("schedule-generation", scheduleSvc.HandleGenerationJob, jobs.QueueConfig{
		Workers:     cfg.Scheduler.WorkerConcurrency,
		MaxRetries:  cfg.Scheduler.WorkerRetries,
		OnExhausted: scheduleSvc.OnJobExhausted,
		Logger:      logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	scheduleSvc.AttachQueue(queue)

	checks := []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: redisPing(redisClient)})
	}

	r := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Tokens:         service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		Metrics:        metrics,
		Schedules:      handler.NewScheduleHandler(scheduleSvc),
		Courses:        handler.NewCourseHandler(courseSvc),
		Exports:        handler.NewExportHandler(exportSvc),
		Ops:            handler.NewMetricsHandler(metrics, checks...),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func redisPing(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
