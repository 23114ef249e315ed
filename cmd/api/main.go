package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/config"
	"github.com/mrmbilling/royalty-ledger/internal/handler"
	"github.com/mrmbilling/royalty-ledger/internal/mailer"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/repository/postgres"
	"github.com/mrmbilling/royalty-ledger/internal/repository/storage"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Royalty Ledger API
// @version 1.0
// @description Monthly royalty entries, commissions and outstanding balances per client
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Connect to database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	// Initialize repositories
	entryRepo := postgres.NewRoyaltyEntryRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// Per-client locks: redis when configured so replicas share them
	var locker service.ClientLocker = service.NewLocalClientLocker()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.RedisAddress).Msg("Failed to connect to redis")
		}
		locker = service.NewRedisClientLocker(redislock.New(rdb), service.DefaultRedisLockConfig())
		log.Info().Str("address", cfg.RedisAddress).Msg("Using redis client locks")
	}

	// Optional archive storage
	var archiveStore service.ArchiveStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ArchiveStore(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 archive store")
		}
		archiveStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Export archiving enabled")
	}

	// Optional mail delivery
	var digestMailer mailer.Mailer
	if cfg.SMTP.Enabled() {
		smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize mailer")
		}
		digestMailer = smtpMailer
	}

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo)
	cascadeService := service.NewCascadeService(entryRepo, metrics)
	royaltyService := service.NewRoyaltyService(entryRepo, clientRepo, settingsService, cascadeService, locker, metrics)
	clientService := service.NewClientService(clientRepo, entryRepo, locker)
	reportService := service.NewReportService(entryRepo, settingsService)
	digestService := service.NewDigestService(reportService, digestMailer, cfg.Digest.Recipients, metrics)
	exportService := service.NewExportService(entryRepo, clientRepo, settingsService, archiveStore, cfg.S3.PresignExpiry)
	importService := service.NewImportService(clientService, royaltyService, metrics)

	// WebSocket hub receives every ledger change
	hub := websocket.NewHub()
	royaltyService.SetEventPublisher(hub)
	clientService.SetEventPublisher(hub)
	importService.SetEventPublisher(hub)

	// Daily digest
	var digestWorker *service.DigestWorker
	if cfg.Digest.Enabled {
		hour, minute, _ := config.ParseClock(cfg.Digest.Time)
		digestWorker = service.NewDigestWorker(digestService, log.Logger, service.DigestWorkerConfig{Hour: hour, Minute: minute})
		digestWorker.Start(ctx)
	}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	jwtValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/4)
	defer rateLimiter.Stop()

	// Initialize handlers
	royaltyHandler := handler.NewRoyaltyHandler(royaltyService)
	clientHandler := handler.NewClientHandler(clientService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	reportHandler := handler.NewReportHandler(reportService, digestService)
	exportHandler := handler.NewExportHandler(exportService)
	importHandler := handler.NewImportHandler(importService)
	wsHandler := handler.NewWebSocketHandler(hub, jwtValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like). The swagger UI needs inline scripts.
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/swagger")
		},
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Operational endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.OpenAPI3Handler(handler.APIServers(cfg.Port, cfg.PublicURL)))
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, royaltyHandler, clientHandler, settingsHandler, reportHandler, exportHandler, importHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if digestWorker != nil {
		digestWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("actor", middleware.Actor(c)).
				Msg("request")

			return nil
		}
	}
}
