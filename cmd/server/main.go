package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/adapter/cache"
	"github.com/wattscope/wattscope/internal/adapter/http/fiber/handlers"
	"github.com/wattscope/wattscope/internal/adapter/http/fiber/middleware"
	"github.com/wattscope/wattscope/internal/adapter/queue"
	"github.com/wattscope/wattscope/internal/adapter/storage/postgres"
	weatherAdapter "github.com/wattscope/wattscope/internal/adapter/weather"
	wsAdapter "github.com/wattscope/wattscope/internal/adapter/websocket"
	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/observability/telemetry"
	"github.com/wattscope/wattscope/internal/ports"
	"github.com/wattscope/wattscope/internal/service/alert"
	"github.com/wattscope/wattscope/internal/service/analytics"
	"github.com/wattscope/wattscope/internal/service/email"
	"github.com/wattscope/wattscope/internal/service/health"
	"github.com/wattscope/wattscope/internal/service/pipeline"
	"github.com/wattscope/wattscope/internal/service/tariff"
	"github.com/wattscope/wattscope/pkg/config"
)

const (
	serviceName    = "wattscope"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting WattScope",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, serviceVersion, cfg.App.Environment, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 5. Initialize Cache (Redis, in-memory fallback)
	var appCache ports.Cache
	if cfg.Redis.URL != "" {
		appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		}
	}
	if appCache == nil {
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 6. Initialize Message Queue (NATS)
	var messageQueue queue.MessageQueue
	natsQueue, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
	if err != nil {
		logger.Warn("NATS unavailable, events will not be published", zap.Error(err))
	} else {
		messageQueue = natsQueue
		defer messageQueue.Close()
	}

	// 7. Initialize Repositories
	settingRepo := postgres.NewAlertSettingRepository(db, logger)
	recipientRepo := postgres.NewEmailRecipientRepository(db, logger)
	eventRepo := postgres.NewAlertEventRepository(db, logger)

	// 8. Initialize Analytics Engines
	anomalyCfg := anomalyConfig(cfg.Anomaly)
	detector := analytics.NewAnomalyDetector(anomalyCfg, logger)

	var efficiency analytics.EfficiencyModel = analytics.NewThresholdModel()
	if cfg.Pipeline.EfficiencyModel == "anomaly" {
		efficiency = analytics.NewAnomalyModel(detector)
	}
	aggregator := analytics.NewAggregator(efficiency, logger)

	tariffService, err := tariff.NewService(tariffConfig(cfg.Tariff), logger)
	if err != nil {
		logger.Fatal("Invalid tariff configuration", zap.Error(err))
	}
	forecaster := analytics.NewForecaster(tariffService, logger)
	suggester := analytics.NewSuggestionEngine(suggestionConfig(cfg.Suggestions), logger)

	// 9. Initialize Weather Client
	weatherCfg := weatherAdapter.DefaultConfig()
	if cfg.Weather.BaseURL != "" {
		weatherCfg.BaseURL = cfg.Weather.BaseURL
	}
	if cfg.Weather.Timeout > 0 {
		weatherCfg.Timeout = cfg.Weather.Timeout
	}
	weatherCfg.APIKey = cfg.Weather.APIKey
	weatherCfg.City = cfg.Weather.City
	weatherClient := weatherAdapter.NewClient(weatherCfg, logger)

	// 10. Initialize WebSocket Hub (for real-time updates)
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	// 11. Initialize Pipeline
	pipelineService := pipeline.NewService(
		aggregator,
		detector,
		forecaster,
		suggester,
		weatherClient,
		appCache,
		messageQueue,
		wsHub,
		pipelineConfig(cfg),
		logger,
	)

	// 12. Initialize Email + Alert Monitor
	emailService, err := email.NewService(emailConfig(cfg.Email), logger)
	if err != nil {
		logger.Fatal("Invalid email configuration", zap.Error(err))
	}

	alertService := alert.NewService(
		settingRepo,
		recipientRepo,
		eventRepo,
		emailService,
		pipelineService,
		messageQueue,
		alertConfig(cfg.Alerts),
		logger,
	)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go alertService.Run(monitorCtx)

	// 13. Initialize Health Service
	var natsConn *nats.Conn
	if nq, ok := messageQueue.(*queue.NATSQueue); ok {
		natsConn = nq.Conn()
	}
	healthService := health.NewService(&health.Config{
		Version: serviceVersion,
		DB:      sqlDB,
		Cache:   appCache,
		NATS:    natsConn,
	}, logger)
	healthService.RegisterChecker("snapshot", health.SnapshotChecker(func() uint64 {
		return pipelineService.Snapshot().Generation
	}))

	// 14. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	app.Use(middleware.CircuitBreaker(logger))

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Ingestion routes
	readingsHandler := handlers.NewReadingsHandler(pipelineService, logger)
	v1.Post("/readings", readingsHandler.Ingest)

	// Device routes
	devicesHandler := handlers.NewDevicesHandler(pipelineService, alertService, logger)
	v1.Get("/devices", devicesHandler.List)
	v1.Get("/devices/available", devicesHandler.Available)
	v1.Get("/devices/thresholds", devicesHandler.Thresholds)
	v1.Get("/devices/:name", devicesHandler.Get)

	// Analytics routes
	analyticsHandler := handlers.NewAnalyticsHandler(pipelineService, tariffService, logger)
	v1.Get("/analytics/peak", analyticsHandler.Peak)
	v1.Get("/analytics/bill", analyticsHandler.Bill)
	v1.Get("/analytics/forecast", analyticsHandler.Forecast)
	v1.Get("/analytics/suggestions", analyticsHandler.Suggestions)
	v1.Get("/analytics/anomalies", analyticsHandler.Anomalies)

	// Alert routes
	alertsHandler := handlers.NewAlertsHandler(alertService, logger)
	v1.Get("/alerts/settings", alertsHandler.ListSettings)
	v1.Post("/alerts/settings", alertsHandler.CreateSetting)
	v1.Delete("/alerts/settings/:id", alertsHandler.DeleteSetting)
	v1.Get("/alerts/recipients", alertsHandler.ListRecipients)
	v1.Post("/alerts/recipients", alertsHandler.CreateRecipient)
	v1.Put("/alerts/recipients/:id", alertsHandler.UpdateRecipient)
	v1.Delete("/alerts/recipients/:id", alertsHandler.DeleteRecipient)
	v1.Get("/alerts/history", alertsHandler.History)
	v1.Post("/alerts/test", alertsHandler.SendTest)

	// Weather route
	weatherHandler := handlers.NewWeatherHandler(weatherClient, cfg.Weather.City, logger)
	v1.Get("/weather", weatherHandler.Get)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Real-time snapshot updates WebSocket
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		wsHub.AddClient(c)
	}))

	// 15. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 16. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func tariffConfig(cfg config.TariffConfig) *tariff.Config {
	if len(cfg.LowerSlabs) == 0 || len(cfg.UpperSlabs) == 0 {
		return tariff.DefaultConfig()
	}
	return &tariff.Config{
		SwitchPoint: cfg.SwitchPoint,
		LowerSlabs:  toSlabs(cfg.LowerSlabs),
		UpperSlabs:  toSlabs(cfg.UpperSlabs),
	}
}

func toSlabs(slabs []config.TariffSlab) []domain.TariffSlab {
	out := make([]domain.TariffSlab, len(slabs))
	for i, s := range slabs {
		out[i] = domain.TariffSlab{UpToUnits: s.UpToUnits, Rate: s.Rate}
	}
	return out
}

func anomalyConfig(cfg config.AnomalyConfig) *analytics.AnomalyConfig {
	if cfg.Trees == 0 {
		return analytics.DefaultAnomalyConfig()
	}
	return &analytics.AnomalyConfig{
		Trees:         cfg.Trees,
		SubsampleSize: cfg.SubsampleSize,
		Contamination: cfg.Contamination,
		MinSamples:    cfg.MinSamples,
		RollingWindow: cfg.RollingWindow,
		Seed:          cfg.Seed,
	}
}

func suggestionConfig(cfg config.SuggestionsConfig) *analytics.SuggestionConfig {
	if cfg.MaxGlobal == 0 {
		return analytics.DefaultSuggestionConfig()
	}
	return &analytics.SuggestionConfig{MaxGlobal: cfg.MaxGlobal, MaxPerDevice: cfg.MaxPerDevice}
}

func pipelineConfig(cfg *config.Config) *pipeline.Config {
	out := pipeline.DefaultConfig()
	out.WeatherCity = cfg.Pipeline.WeatherCity
	if out.WeatherCity == "" {
		out.WeatherCity = cfg.Weather.City
	}
	if cfg.Cache.ForecastTTL > 0 {
		out.ForecastTTL = cfg.Cache.ForecastTTL
	}
	if cfg.Cache.WeatherTTL > 0 {
		out.WeatherTTL = cfg.Cache.WeatherTTL
	}
	return out
}

func alertConfig(cfg config.AlertsConfig) *alert.Config {
	if cfg.Interval == 0 {
		return alert.DefaultConfig()
	}
	return &alert.Config{Interval: cfg.Interval, Cooldown: cfg.Cooldown}
}

func emailConfig(cfg config.EmailConfig) *email.Config {
	if cfg.Provider == "" {
		return email.DefaultConfig()
	}
	return &email.Config{
		Provider:       cfg.Provider,
		FromEmail:      cfg.From,
		FromName:       cfg.FromName,
		SendGridAPIKey: cfg.APIKey,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUsername:   cfg.SMTPUser,
		SMTPPassword:   cfg.SMTPPass,
	}
}
