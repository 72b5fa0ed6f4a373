package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/language-camp/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/language-camp/internal/adapters/redis"
	stripeadapter "github.com/robertarktes/language-camp/internal/adapters/stripe"
	"github.com/robertarktes/language-camp/internal/auth"
	"github.com/robertarktes/language-camp/internal/checkout"
	"github.com/robertarktes/language-camp/internal/config"
	httphandler "github.com/robertarktes/language-camp/internal/http"
	"github.com/robertarktes/language-camp/internal/idempotency"
	"github.com/robertarktes/language-camp/internal/observability"
	"github.com/robertarktes/language-camp/internal/rateLimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("invalid api config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "camp-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger("camp-api", cfg.LogLevel)
	observability.InitMetrics()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	store := mongoadapter.NewStore(mongoClient, cfg.MongoDB, logger)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	redisCache := redisadapter.NewCache(redisClient)
	if err := redisCache.Ping(connectCtx); err != nil {
		logger.WithError(err).Warn("redis unavailable at startup, continuing without cache")
	}
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisCache)

	handlers := httphandler.NewHandlers(cfg, httphandler.Dependencies{
		Classes:     store,
		Instructors: store,
		Users:       store,
		Carts:       store,
		Payments:    store,
		Checkout:    checkout.NewSequencer(store, idemp, redisCache, logger),
		Gateway:     stripeadapter.NewGateway(cfg.StripeSecretKey, cfg.PaymentCurrency, nil),
		Cache:       redisCache,
		Tokens:      auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL),
		Database:    store,
		Logger:      logger,
	})

	r := httphandler.SetupRouter(handlers, logger, rl, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("camp api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
