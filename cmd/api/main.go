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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/adapters/gemini"
	"github.com/ghumakkad/trip-share-api/internal/adapters/googleplaces"
	"github.com/ghumakkad/trip-share-api/internal/adapters/httpapi"
	"github.com/ghumakkad/trip-share-api/internal/adapters/mailqueue"
	memplacescache "github.com/ghumakkad/trip-share-api/internal/adapters/memory/placescache"
	memtriprepo "github.com/ghumakkad/trip-share-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/ghumakkad/trip-share-api/internal/adapters/memory/userrepo"
	"github.com/ghumakkad/trip-share-api/internal/adapters/openweather"
	"github.com/ghumakkad/trip-share-api/internal/adapters/postgres"
	pgtriprepo "github.com/ghumakkad/trip-share-api/internal/adapters/postgres/triprepo"
	pguserrepo "github.com/ghumakkad/trip-share-api/internal/adapters/postgres/userrepo"
	"github.com/ghumakkad/trip-share-api/internal/adapters/razorpay"
	redisplacescache "github.com/ghumakkad/trip-share-api/internal/adapters/redis/placescache"
	"github.com/ghumakkad/trip-share-api/internal/app/payments"
	"github.com/ghumakkad/trip-share-api/internal/app/sweep"
	"github.com/ghumakkad/trip-share-api/internal/app/trips"
	"github.com/ghumakkad/trip-share-api/internal/app/users"
	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
	platformclock "github.com/ghumakkad/trip-share-api/internal/platform/clock"
	"github.com/ghumakkad/trip-share-api/internal/platform/config"
	"github.com/ghumakkad/trip-share-api/internal/platform/keylock"
	"github.com/ghumakkad/trip-share-api/internal/platform/logger"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/assistant"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/forecast"
	notifierport "github.com/ghumakkad/trip-share-api/internal/ports/out/notifier"
	paymentport "github.com/ghumakkad/trip-share-api/internal/ports/out/payment"
	placesport "github.com/ghumakkad/trip-share-api/internal/ports/out/places"
	triprepoport "github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
	userrepoport "github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog := logger.New(cfg.Environment)
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	clk := platformclock.NewSystemClock()
	locks := keylock.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	// Storage.
	var (
		tripRepo triprepoport.Repository
		userRepo userrepoport.Repository
		cleanup  func()
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			zlog.Fatal("postgres connect failed", zap.Error(err))
		}
		cleanup = pool.Close
		if err := postgres.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			zlog.Fatal("migrations failed", zap.Error(err))
		}
		tripRepo = pgtriprepo.NewRepo(pool)
		userRepo = pguserrepo.NewRepo(pool)
	default:
		tripRepo = memtriprepo.NewRepo()
		userRepo = memuserrepo.NewRepo()
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Places cache: Redis when configured, in-process bounded otherwise.
	var placesCache placesport.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		placesCache = redisplacescache.New(rdb, cfg.PlacesCacheTTL)
	} else {
		placesCache = memplacescache.New(cfg.PlacesCacheTTL, cfg.PlacesCacheMaxEntries)
	}

	// Optional outbound providers: each degrades cleanly when unconfigured.
	var forecastProv forecast.Provider
	if cfg.WeatherAPIKey != "" {
		forecastProv = openweather.NewProvider(cfg.WeatherAPIKey, cfg.WeatherBaseURL, nil)
	}

	var placesProv placesport.Provider
	if cfg.PlacesAPIKey != "" {
		p, err := googleplaces.NewProvider(cfg.PlacesAPIKey)
		if err != nil {
			zlog.Fatal("google places client failed", zap.Error(err))
		}
		placesProv = p
	}

	var notif notifierport.Notifier
	if cfg.RabbitMQURL != "" {
		pub, err := mailqueue.NewPublisher(cfg.RabbitMQURL, cfg.MailExchange, cfg.MailQueue)
		if err != nil {
			zlog.Fatal("rabbitmq connect failed", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		notif = pub
	}

	var payProv paymentport.Provider
	if cfg.RazorpayKeyID != "" {
		payProv = razorpay.NewProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, "", nil)
	}

	var chat assistant.Provider
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewProvider(ctx, cfg.GeminiAPIKey)
		if err != nil {
			zlog.Fatal("gemini client failed", zap.Error(err))
		}
		defer func() { _ = g.Close() }()
		chat = g
	}

	// Services.
	tripSvc := trips.NewService(trips.Deps{
		Trips:           tripRepo,
		Users:           userRepo,
		Clock:           clk,
		Locks:           locks,
		Log:             zlog,
		Forecast:        forecastProv,
		Places:          placesProv,
		PlacesCache:     placesCache,
		Notifier:        notif,
		ExternalTimeout: cfg.ExternalTimeout,
	})
	userSvc := users.NewService(users.Deps{
		Users:  userRepo,
		Tokens: tokens,
		Clock:  clk,
		Log:    zlog,
	})
	var paySvc *payments.Service
	if payProv != nil {
		paySvc = payments.NewService(payments.Deps{
			Trips:           tripRepo,
			Provider:        payProv,
			Clock:           clk,
			Log:             zlog,
			ExternalTimeout: cfg.ExternalTimeout,
		})
	}

	// Nightly status reconciliation shares the per-trip locks with request
	// handlers.
	sweepSvc := sweep.NewService(sweep.Deps{Trips: tripRepo, Clock: clk, Locks: locks, Log: zlog})
	scheduler := sweep.NewScheduler(sweepSvc, zlog)
	scheduler.Start()
	defer scheduler.Stop()

	api := &httpapi.Server{
		Users:       userSvc,
		Trips:       tripSvc,
		Payments:    paySvc,
		Chat:        chat,
		ChatTimeout: cfg.ExternalTimeout,
	}
	handler := httpapi.NewRouter(api, tokens, userRepo, zlog)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("api listening", zap.String("port", cfg.ServerPort), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}
