package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/beautydesk/beautydesk/internal/config"
	"github.com/beautydesk/beautydesk/internal/domain/client"
	"github.com/beautydesk/beautydesk/internal/domain/company"
	"github.com/beautydesk/beautydesk/internal/domain/dashboard"
	"github.com/beautydesk/beautydesk/internal/domain/financial"
	"github.com/beautydesk/beautydesk/internal/domain/procedure"
	"github.com/beautydesk/beautydesk/internal/domain/scheduling"
	"github.com/beautydesk/beautydesk/internal/platform/auth"
	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/internal/platform/middleware"
)

const (
	version         = "0.1.0"
	bodyLimit       = "1M"
	sessionSweep    = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		count, err := db.NewMigrator(pool, migrationsFS(cfg.MigrationsDir)).Up(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
		logger.Info().Int("applied", count).Msg("migrations up to date")
	}

	// Sessions
	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up session store")
	}
	defer store.Close()
	mgr := auth.NewManager(store, auth.NewTokenIssuer([]byte(cfg.SessionSecret)), cfg.SessionTTL, cfg.SessionCookieSecure)

	e := newServer(cfg, logger, pool, mgr)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newSessionStore uses redis when REDIS_URL is set so that several
// instances share sessions, and an in-process store otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config) (auth.SessionStore, error) {
	if cfg.RedisURL == "" {
		return auth.NewMemorySessionStore(sessionSweep), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return auth.NewRedisSessionStore(rdb), nil
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rl.RequestsPerSecond <= 0 || rl.BurstSize <= 0 {
		return middleware.DefaultRateLimitConfig()
	}
	return rl
}

// newServer builds the echo instance with global middleware and every
// domain route registered.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, mgr *auth.Manager) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestIDWithLogger(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Audit(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.SanitizeWithLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.RateLimit(rateLimitConfig(cfg)))
	e.Use(middleware.BodyLimit(bodyLimit))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout, financial.ExportRoute))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Repositories
	tx := db.NewTransactor(pool)
	companyRepo := company.NewCompanyRepoPG(pool)
	userRepo := company.NewUserRepoPG(pool)
	clientRepo := client.NewRepoPG(pool)
	procedureRepo := procedure.NewRepoPG(pool)
	appointmentRepo := scheduling.NewAppointmentRepoPG(pool)
	recordRepo := financial.NewRecordRepoPG(pool)
	goalRepo := financial.NewGoalRepoPG(pool)

	// Services
	procedureSvc := procedure.NewService(procedureRepo)
	financialSvc := financial.NewService(recordRepo, goalRepo)
	schedulingSvc := scheduling.NewService(appointmentRepo, recordRepo, clientRepo, userRepo, procedureSvc, tx)
	clientSvc := client.NewService(clientRepo, schedulingSvc, tx)
	companySvc := company.NewService(companyRepo, userRepo, tx, mgr)
	dashboardSvc := dashboard.NewService(schedulingSvc, financialSvc)

	// API groups
	public := e.Group("/api")
	api := e.Group("/api", auth.SessionMiddleware(mgr, auth.AuthSkipper), db.TenantMiddleware())

	company.NewHandler(companySvc, mgr).RegisterRoutes(public, api)
	client.NewHandler(clientSvc).RegisterRoutes(api)
	procedure.NewHandler(procedureSvc).RegisterRoutes(api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	financial.NewHandler(financialSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)

	return e
}
