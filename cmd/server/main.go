package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	inventoryapp "github.com/ryznreal/offers/internal/application/inventory"
	listingapp "github.com/ryznreal/offers/internal/application/listing"
	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/cache"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"github.com/ryznreal/offers/internal/infrastructure/event"
	"github.com/ryznreal/offers/internal/infrastructure/logger"
	"github.com/ryznreal/offers/internal/infrastructure/messaging"
	"github.com/ryznreal/offers/internal/infrastructure/migration"
	"github.com/ryznreal/offers/internal/infrastructure/persistence"
	"github.com/ryznreal/offers/internal/infrastructure/storage"
	"github.com/ryznreal/offers/internal/infrastructure/telemetry"
	"github.com/ryznreal/offers/internal/interfaces/http/handler"
	"github.com/ryznreal/offers/internal/interfaces/http/middleware"
	"github.com/ryznreal/offers/internal/interfaces/http/router"
	"github.com/ryznreal/offers/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/ryznreal/offers/docs"
)

//go:generate swag init --parseDependency --parseInternal -g main.go -d ./,../../internal/interfaces/http/handler -o ../../docs

//	@title			Offers API
//	@version		1.0
//	@description	Project inventory and derived property listings.
//	@BasePath		/api/v1

const (
	shutdownTimeout = 30 * time.Second
	brochureRoute   = "/api/v1/projects/:id/brochure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// Bootstrap logger for telemetry setup; replaced once the log bridge exists
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	profiler := initProfiler(cfg, bootLog)
	otel := initTelemetry(ctx, cfg, bootLog, profiler.IsEnabled())

	var extraCores []zapcore.Core
	if otel.LogsEnabled() {
		extraCores = append(extraCores, otel.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	}
	log, err := logger.New(logCfg, extraCores...)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting offers service",
		zap.String("name", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

	db := initDatabase(cfg, log)
	repos := persistence.NewRepositories(db)

	projectService := inventoryapp.NewProjectService(repos.Projects)
	catalogService := listingapp.NewCatalogService(repos.Projects, repos.Properties)

	var inventoryMetrics *telemetry.InventoryMetrics
	if otel.MetricsEnabled() {
		inventoryMetrics, err = telemetry.NewInventoryMetrics(telemetry.InventoryMetricsConfig{
			Meter:  otel.Meter("offers/inventory"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to create inventory metrics", zap.Error(err))
		}
		catalogService.SetMetrics(inventoryMetrics)
		inventoryMetrics.StartPeriodicCollection(ctx, projectService, cfg.Telemetry.MetricsCollectInterval)
	}

	events := initEvents(ctx, cfg, log, inventoryMetrics)
	projectService.SetEventPublisher(events.bus)

	projectService.SetBrochureStorage(initStorage(ctx, cfg, log), cfg.HTTP.MaxUploadSize)

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	engine := newEngine(cfg, log, otel, limiter, profiler.IsEnabled())

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, healthChecks(db, events.store)...)
	engine.GET("/health", systemHandler.Health)
	middleware.MountSwagger(engine, middleware.SwaggerConfig{
		Enabled:    cfg.HTTP.SwaggerEnabled,
		AllowedIPs: cfg.HTTP.SwaggerAllowedIPs,
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewProjectHandler(projectService)).
		Register(handler.NewCatalogHandler(catalogService)).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	events.stop(shutdownCtx, log)
	if err := events.store.Close(); err != nil {
		log.Error("Failed to close idempotency store", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	if inventoryMetrics != nil {
		inventoryMetrics.Stop()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}

	log.Info("Server exited")
	_ = log.Sync()
	if err := otel.Shutdown(shutdownCtx); err != nil {
		bootLog.Error("Failed to shutdown telemetry", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		bootLog.Error("Failed to stop profiler", zap.Error(err))
	}
}

// initProfiler starts Pyroscope when telemetry.profiling_enabled is set
func initProfiler(cfg *config.Config, log *zap.Logger) *telemetry.Profiler {
	tc := cfg.Telemetry
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           tc.ProfilingEnabled,
		ServerAddress:     tc.ProfilingServerAddress,
		ApplicationName:   tc.ServiceName,
		BasicAuthUser:     tc.ProfilingAuthUser,
		BasicAuthPassword: tc.ProfilingAuthPassword,
		ProfileTypes:      tc.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	return profiler
}

// initTelemetry creates the providers of the enabled signals. Metrics and
// logs are only exported when telemetry as a whole is on.
func initTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger, spanProfiles bool) *telemetry.Providers {
	tc := cfg.Telemetry
	otel, err := telemetry.Setup(ctx, telemetry.Config{
		CollectorEndpoint:     tc.CollectorEndpoint,
		Insecure:              tc.Insecure,
		ServiceName:           tc.ServiceName,
		ServiceVersion:        cfg.App.Version,
		TracesEnabled:         tc.Enabled,
		SamplingRatio:         tc.SamplingRatio,
		SpanProfiles:          spanProfiles,
		MetricsEnabled:        tc.Enabled && tc.MetricsEnabled,
		MetricsExportInterval: tc.MetricsExportInterval,
		LogsEnabled:           tc.Enabled && tc.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	return otel
}

// initDatabase opens the configured database and brings its schema up to
// date. It returns nil for the memory driver.
func initDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using in-memory repositories; data is lost on restart")
		return nil
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	if cfg.Database.Driver == config.DriverSQLite {
		dbTracing.DBSystem = "sqlite"
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, telemetry.NewDBTracingPlugin(dbTracing, log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	switch {
	case cfg.Database.Driver == config.DriverSQLite:
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	case cfg.Database.AutoMigrate:
		if err := runEmbeddedMigrations(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	return db
}

// runEmbeddedMigrations applies the bundled SQL migrations on a dedicated
// connection, since closing the migrator closes its connection too
func runEmbeddedMigrations(dsn string, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.FromFS(migrations.FS), log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}

// eventStack is the event bus and what hangs off it
type eventStack struct {
	bus       *event.InMemoryEventBus
	store     shared.IdempotencyStore
	publisher *messaging.RabbitMQPublisher
	retrier   *event.RetryingHandler
}

// stop drains the bus first, then the retry worker, then the broker connection
func (e *eventStack) stop(ctx context.Context, log *zap.Logger) {
	if err := e.bus.Stop(ctx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if e.retrier != nil {
		if err := e.retrier.Stop(ctx); err != nil {
			log.Error("Failed to stop event retry worker", zap.Error(err))
		}
	}
	if e.publisher != nil {
		if err := e.publisher.Close(); err != nil {
			log.Error("Failed to close RabbitMQ publisher", zap.Error(err))
		}
	}
}

// initEvents starts the event bus with the audit log, inventory metrics and
// RabbitMQ forwarding handlers. Broker publishes go through the retry
// worker and then the idempotency guard, so a failed publish is retried
// and a successful one is never repeated.
func initEvents(ctx context.Context, cfg *config.Config, log *zap.Logger, metrics *telemetry.InventoryMetrics) *eventStack {
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	if metrics != nil {
		bus.Subscribe(event.NewInventoryMetricsHandler(metrics))
	}

	store, err := cache.NewIdempotencyStoreFactory(cfg.Event, cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	stack := &eventStack{bus: bus, store: store}
	if cfg.Messaging.Enabled {
		serializer := event.NewEventSerializer()
		event.RegisterInventoryEvents(serializer)

		stack.publisher, err = messaging.NewRabbitMQPublisher(cfg.Messaging, serializer, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		guarded := event.NewIdempotentHandler(stack.publisher, store, log,
			event.WithIdempotencyConfig(shared.IdempotencyConfig{
				TTL:     cfg.Event.IdempotencyTTL,
				Enabled: true,
			}),
			event.WithIdempotencyScope("broker"),
		)
		stack.retrier = event.NewRetryingHandler(guarded, event.RetryConfig{
			MaxAttempts: cfg.Event.RetryMaxAttempts,
			BaseBackoff: cfg.Event.RetryBaseBackoff,
			MaxBackoff:  cfg.Event.RetryMaxBackoff,
			QueueSize:   cfg.Event.RetryQueueSize,
		}, log)
		if err := stack.retrier.Start(ctx); err != nil {
			log.Fatal("Failed to start event retry worker", zap.Error(err))
		}
		bus.Subscribe(stack.retrier)
	}

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	return stack
}

func initStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) inventoryapp.BrochureStorage {
	if cfg.Storage.Driver != "s3" {
		log.Warn("Using stub brochure storage; uploads are kept in memory")
		return storage.NewStubBrochureStorage(cfg.Storage.PublicBaseURL)
	}

	s3Storage, err := storage.NewS3BrochureStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create S3 brochure storage", zap.Error(err))
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare brochure bucket", zap.Error(err), zap.String("bucket", s3Storage.Bucket()))
	}
	return s3Storage
}

func newEngine(cfg *config.Config, log *zap.Logger, otel *telemetry.Providers, limiter *middleware.RateLimiter, profiling bool) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanAttributes())
	}
	engine.Use(middleware.HTTPMetrics(otel))
	if profiling {
		engine.Use(middleware.Profiling(middleware.DefaultProfilingConfig()))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimitWithOverrides(cfg.HTTP.MaxBodySize, map[string]int64{
		brochureRoute: cfg.HTTP.MaxUploadSize,
	}))
	if limiter != nil {
		engine.Use(middleware.RateLimit(limiter))
	}
	return engine
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthChecks(db *persistence.Database, store shared.IdempotencyStore) []handler.HealthCheck {
	var checks []handler.HealthCheck
	if db != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "database",
			Check: func(context.Context) error { return db.Ping() },
		})
	}
	if p, ok := store.(pinger); ok {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: p.Ping})
	}
	return checks
}
