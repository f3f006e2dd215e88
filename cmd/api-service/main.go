package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/job-board/internal/api/cache"
	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/cuongbtq/job-board/internal/api/handler"
	"github.com/cuongbtq/job-board/internal/api/router"
	"github.com/cuongbtq/job-board/internal/api/service"
	"github.com/cuongbtq/job-board/internal/api/storage"
	"github.com/cuongbtq/job-board/internal/api/views"
	"github.com/cuongbtq/job-board/internal/config"
	"github.com/cuongbtq/job-board/migrations"
	"github.com/cuongbtq/job-board/shared/logger"
	"github.com/cuongbtq/job-board/shared/postgresql"
	"github.com/cuongbtq/job-board/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("views_mode", cfg.Views.Mode),
	)

	// Resources are released in reverse order of acquisition
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	store, dbClient, err := initStore(cfg, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize job store: %w", err)
	}
	if dbClient != nil {
		closers = append(closers, func() {
			appLogger.Info("Database pool stats", dbClient.PoolStats())
			dbClient.Close()
		})
	}

	var jobCache *cache.Cache
	if cfg.Redis.Enabled {
		jobCache, err = cache.New(cache.Config{
			URL:       cfg.Redis.URL,
			TTL:       cfg.Redis.TTL,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		closers = append(closers, func() { jobCache.Close() })
	}

	recorder, err := initViewRecorder(cfg, store, appLogger.Logger, &closers)
	if err != nil {
		return fmt.Errorf("failed to initialize view recorder: %w", err)
	}
	// Pending view increments finish before their connections close
	closers = append(closers, func() { recorder.Close() })

	jobService := service.NewJobService(&service.Config{
		Store:  store,
		Cache:  jobCache,
		Views:  recorder,
		Logger: appLogger.Logger,
	})

	r := initRouter(cfg, appLogger.Logger, jobService)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server",
			slog.String("address", addr),
			slog.Duration("read_timeout", cfg.Server.ReadTimeout),
			slog.Duration("write_timeout", cfg.Server.WriteTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down",
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		appLogger.Error("Server failed", slog.Any("error", err))
		return err
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig, app *config.AppConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      app.Name,
		Version:      app.Version,
		Environment:  app.Environment,
	}

	return logger.New(loggerCfg)
}

// initStore builds the configured Job Store. The database client is nil for the memory driver.
func initStore(cfg *config.Config, logger *slog.Logger) (storage.Store, *postgresql.Client, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn("Using in-memory job store; data is lost on restart")
		return storage.NewMemoryStore(logger), nil, nil
	}

	dbClient, err := initPostgreSQL(&cfg.Database, cfg.App.Name, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := dbClient.ApplySchema(ctx, migrations.FS); err != nil {
			dbClient.Close()
			return nil, nil, err
		}
	}

	return storage.NewPostgresStore(dbClient, logger), dbClient, nil
}

// initViewRecorder picks how view counters are incremented. In queue mode the
// RabbitMQ client is registered with closers.
func initViewRecorder(cfg *config.Config, store storage.Store, logger *slog.Logger, closers *[]func()) (views.Recorder, error) {
	if cfg.Views.Mode != config.ViewsModeQueue {
		return views.NewDirectRecorder(store, cfg.Views.Timeout, logger), nil
	}

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, logger)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, func() { rabbitClient.Close() })

	return views.NewQueueRecorder(rabbitClient, cfg.Views.Timeout, logger), nil
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, appName string, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		ApplicationName: appName,
		ConnectTimeout:  cfg.ConnectTimeout,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client used to publish view events
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(cfg.ClientConfig(), logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, jobService *service.JobService) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	handlerDeps := &handler.Dependencies{
		Logger:  logger,
		Service: jobService,
		ListLimits: dto.PageLimits{
			Default: cfg.Pagination.DefaultListLimit,
			Max:     cfg.Pagination.MaxLimit,
		},
		SearchLimits: dto.PageLimits{
			Default: cfg.Pagination.DefaultSearchLimit,
			Max:     cfg.Pagination.MaxLimit,
		},
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}

	opts := router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = router.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	return router.SetupRouter(handlerDeps, opts)
}
