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

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/infrastructure/cache"
	"github.com/erp/subcontracting/internal/infrastructure/config"
	"github.com/erp/subcontracting/internal/infrastructure/event"
	"github.com/erp/subcontracting/internal/infrastructure/logger"
	"github.com/erp/subcontracting/internal/infrastructure/migration"
	"github.com/erp/subcontracting/internal/infrastructure/persistence"
	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/erp/subcontracting/internal/interfaces/http/handler"
	"github.com/erp/subcontracting/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

//	@title			External Production API
//	@version		1.0
//	@description	Subcontracting worksheets: send production orders and work orders to external partners.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry is set up first so that the bridged logger reaches the collector
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log = logProvider.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting external production service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	if cfg.Database.AutoMigrate && cfg.Database.Driver == config.DriverPostgres {
		if err := applyMigrations(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:               cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:                cfg.Database.DBName,
		IncludeQueryVariables: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	store, err := cache.NewWorksheetStoreFactory(cfg.Redis, cfg.Worksheet,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Worksheet.FallbackToMemory),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create worksheet store", zap.Error(err))
	}
	defer func() {
		_ = store.Close()
	}()

	var meter metric.Meter
	var busOpts []event.BusOption
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(cfg.Telemetry.ServiceName)
		busOpts = append(busOpts, event.WithMeter(meter))
	}

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	eventBus, err := event.NewInMemoryEventBus(log, busOpts...)
	if err != nil {
		log.Fatal("Failed to create event bus", zap.Error(err))
	}
	eventBus.Subscribe(event.NewAuditLogHandler(serializer, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	service := appsub.NewExternalProductionService(
		persistence.NewGormRepositories(db.DB),
		persistence.NewGormTransactionScope(db.DB),
		store,
		log,
	)
	service.SetEventPublisher(eventBus)
	service.SetDefaults(subcontracting.Defaults{
		CreatePurchaseOrder:  cfg.Subcontracting.CreatePurchaseOrder,
		MergePurchaseOrder:   cfg.Subcontracting.MergePurchaseOrder,
		ConfirmPurchaseOrder: cfg.Subcontracting.ConfirmPurchaseOrder,
		SameProductInOut:     cfg.Subcontracting.SameProductInOut,
	})

	if meter != nil {
		metrics, err := telemetry.NewSubcontractingMetrics(meter)
		if err != nil {
			log.Fatal("Failed to register workflow metrics", zap.Error(err))
		}
		service.SetMetrics(metrics)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.Config{
		ServiceName:      cfg.Telemetry.ServiceName,
		Logger:           log,
		TracingEnabled:   tracerProvider.IsEnabled(),
		Meter:            meter,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		GzipEnabled:      cfg.HTTP.GzipEnabled,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		checks["worksheet_store"] = pinger.Ping
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, checks)

	router.NewRouter(engine, router.WithHealth(systemHandler.Health)).
		Register(handler.NewWorksheetHandler(service)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// applyMigrations brings the postgres schema to the newest version on a
// dedicated connection, which the migrator closes.
func applyMigrations(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Options{Dir: cfg.Database.MigrationsPath}, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Schema up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
