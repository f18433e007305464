package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emires65/simpleprofit-dao-trader/internal/api/routes"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/cache"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/config"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/di"
	"github.com/emires65/simpleprofit-dao-trader/internal/workers/investment_expiry_worker"
	"github.com/emires65/simpleprofit-dao-trader/internal/workers/profit_accrual_worker"
	"github.com/emires65/simpleprofit-dao-trader/pkg/logger"
	"github.com/emires65/simpleprofit-dao-trader/pkg/metrics"
	"github.com/emires65/simpleprofit-dao-trader/pkg/tracing"
)

// expirySchedule runs daily just after midnight UTC, when end dates roll over
const expirySchedule = "5 0 * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	tracingShutdown, err := tracing.InitTracer(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}, log.Zap())
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}
	defer tracingShutdown(context.Background())

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database connection", "error", err)
		}
	}()

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	redis, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer redis.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	container := di.NewContainer(cfg, log, db, redis)

	if err := container.AdminAuthService.EnsureSeedAccount(
		context.Background(), cfg.Admin.Email, cfg.Admin.PasswordHash,
	); err != nil {
		log.Fatal("Failed to seed admin account", "error", err)
	}

	router := routes.SetupRoutes(container)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	accrualWorker := profit_accrual_worker.NewWorker(
		container.AccrualService,
		time.Duration(cfg.Accrual.IntervalSeconds)*time.Second,
		log.Zap(),
	)
	go accrualWorker.Start(workerCtx)

	expiryWorker := investment_expiry_worker.NewWorker(
		container.InvestingService,
		expirySchedule,
		log.Zap(),
	)
	if err := expiryWorker.Start(workerCtx); err != nil {
		log.Fatal("Failed to start expiry worker", "error", err)
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			stats := db.Stats()
			metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
			metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
			metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	accrualWorker.Stop()
	expiryWorker.Stop()
	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited gracefully")
}
