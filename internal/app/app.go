package app

import (
	"context"
	"fmt"
	"metalrates/internal/platform/db"
	httpserver "metalrates/internal/platform/http"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metalrates/internal/adapters"
	"metalrates/internal/adapters/broadcast"
	"metalrates/internal/adapters/cache"
	"metalrates/internal/adapters/postgres"
	"metalrates/internal/adapters/quotes"
	"metalrates/internal/api"
	"metalrates/internal/auth"
	"metalrates/internal/booking"
	"metalrates/internal/config"
	"metalrates/internal/domain"
	"metalrates/internal/rate"
	"metalrates/internal/rate/handler"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	if err = checkConfig(appCfg); err != nil {
		logrus.WithError(err).Error("Invalid configuration")
		return err
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	if err = db.Migrate(startupCtx, pool); err != nil {
		logrus.WithError(err).Error("Failed to apply migrations")
		return err
	}
	logrus.Info("✅ Migrations applied")

	// Base HTTP client for quote sources (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	fetcher := quotes.NewFetcher(&http.Client{Timeout: httpTimeout}, appCfg.HTTPClient.UserAgent, httpTimeout)
	sources, err := quotes.NewFromConfig(appCfg.Quotes, fetcher)
	if err != nil {
		logrus.WithError(err).Error("Invalid quote source configuration")
		return err
	}
	logrus.WithField("order", appCfg.Quotes.Order).Info("✅ Quote sources configured")

	// Repositories
	rateRepo := postgres.NewRateRepository(pool)
	marginRepo := postgres.NewMarginRepository(pool)
	lockRepo := postgres.NewRateLockRepository(pool)
	settings := cache.NewCachedSettings(postgres.NewSettingsRepository(pool), time.Minute)

	// Publishers
	hub := broadcast.NewHub(0)
	publishers := []adapters.Publisher{hub}
	if appCfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Addr,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		if pingErr := rdb.Ping(startupCtx).Err(); pingErr != nil {
			logrus.WithError(pingErr).Warn("Redis unreachable at startup; publishes will be retried every tick")
		}
		publishers = append(publishers, broadcast.NewRedisPublisher(rdb, appCfg.Redis.Channel))
		logrus.Info("✅ Redis publisher enabled")
	}

	// Rate engine
	engine, err := newEngine(appCfg.Rates, sources, rateRepo, marginRepo, broadcast.NewFanout(publishers...))
	if err != nil {
		return err
	}
	rateService := rate.NewService(engine, marginRepo, appCfg.Rates.MaxMargin)
	bookingManager := booking.NewManager(lockRepo, rateService, settings, time.Duration(appCfg.Booking.LockTTLHours)*time.Hour)

	scheduler := rate.NewScheduler(engine, time.Duration(appCfg.Scheduler.PollIntervalSec)*time.Second)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewHandler(rateService, hub, settings, bookingManager)
	router := api.NewRouter(rateHandler, api.Guards{
		Admin:   auth.NewAdminGuard(appCfg.Auth.JWTSecret, appCfg.Auth.AdminRole).Middleware,
		Limiter: auth.NewClientLimiter(appCfg.Booking.FreezeRPS, appCfg.Booking.FreezeBurst).Middleware,
	})

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// checkConfig rejects settings that would fail after the pool and scheduler are up.
func checkConfig(cfg *config.AppConfig) error {
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required for admin routes")
	}
	if len(cfg.Quotes.Order) == 0 {
		return fmt.Errorf("no quote sources configured")
	}
	return nil
}

func newEngine(cfg config.Rates, sources []adapters.QuoteSource, rateRepo adapters.RateRepository,
	marginRepo adapters.MarginRepository, publisher adapters.Publisher) (*rate.Engine, error) {
	gold := domain.Bounds{Min: cfg.GoldBounds.Min, Max: cfg.GoldBounds.Max}
	silver := domain.Bounds{Min: cfg.SilverBounds.Min, Max: cfg.SilverBounds.Max}
	if gold.Min <= 0 || gold.Max <= gold.Min || silver.Min <= 0 || silver.Max <= silver.Min {
		return nil, fmt.Errorf("invalid rate bounds: gold %+v silver %+v", gold, silver)
	}

	ttl := time.Duration(cfg.CacheTTLSec) * time.Second
	quoteCache, err := cache.NewQuoteCache(ttl)
	if err != nil {
		return nil, err
	}

	ratio := cfg.Gold22PurityRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.916
	}
	bounds := rate.NewBoundsTable(gold, silver, ratio)
	normalizer := rate.NewFamilyNormalizer(scaleRules(cfg.Scale.Gold), scaleRules(cfg.Scale.Silver), ratio)
	static := rate.StaticRates{Gold: cfg.Fallback.Gold, Gold22: cfg.Fallback.Gold22, Silver: cfg.Fallback.Silver}

	return rate.NewEngine(rate.EngineDeps{
		Resolver:    rate.NewResolver(sources, normalizer, rate.NewValidator(bounds), rateRepo, static),
		Builder:     rate.NewPayloadBuilder(bounds, static),
		Cache:       quoteCache,
		MarginRepo:  marginRepo,
		RateRepo:    rateRepo,
		Publisher:   publisher,
		Gold22Ratio: ratio,
		TTL:         ttl,
	}), nil
}

func scaleRules(in []config.ScaleRule) []rate.ScaleRule {
	out := make([]rate.ScaleRule, 0, len(in))
	for _, r := range in {
		if r.Above > 0 && r.Divisor > 0 {
			out = append(out, rate.ScaleRule{Above: r.Above, Divisor: r.Divisor})
		}
	}
	return out
}
