package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nazmul-hq/freebusy/libs/auth"
	"github.com/nazmul-hq/freebusy/libs/config"
	"github.com/nazmul-hq/freebusy/libs/db"
	"github.com/nazmul-hq/freebusy/libs/httpx"
	"github.com/nazmul-hq/freebusy/libs/kafkax"
	otelx "github.com/nazmul-hq/freebusy/libs/otel"
	"github.com/nazmul-hq/freebusy/libs/runtime"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/cache"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/consumer"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/handlers"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/inbox"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/outbox"
	"github.com/nazmul-hq/freebusy/services/availability-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	} else {
		logger.Warn("REDIS_ADDR not set; slot cache disabled")
	}
	slotCache := cache.New(rdb, 60*time.Second)

	repo := storage.NewCalendarRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	// Mutations committed by other instances reach us through Kafka; bumping
	// the cache version keeps every instance's slot responses fresh.
	inboxRepo := inbox.NewRepository(pool)
	invalidateOnEvent := func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			CalendarID string `json:"calendar_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil || payload.CalendarID == "" {
			logger.Error("invalid event payload", "topic", msg.Topic)
			return nil
		}
		return slotCache.Invalidate(ctx, payload.CalendarID)
	}
	for _, topic := range []string{
		outbox.EventAvailabilityUpdated,
		outbox.EventCreated,
		outbox.EventCancelled,
	} {
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "availability-service"),
			Topic:   topic,
		}, invalidateOnEvent)
		go eventConsumer.Run(ctx)
	}

	slotsHandler := handlers.NewSlotsHandler(repo, slotCache, logger)
	adminHandler := handlers.NewAdminHandler(repo, outboxRepo, slotCache, logger)

	authCfg := handlers.AuthConfig{
		JWTSecret:  config.String("JWT_SECRET", ""),
		APIKeyHash: config.String("ADMIN_API_KEY_HASH", ""),
	}
	if jwksURL := config.String("JWKS_URL", ""); jwksURL != "" {
		authCfg.JWKS = auth.NewJWKSClient(jwksURL, 5*time.Minute)
	}
	requireAdmin := handlers.RequireAdmin(authCfg, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	}
	if rdb != nil {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/v1/slots", slotsHandler.List)
	mux.HandleFunc("/api/v1/slots/check", slotsHandler.Check)
	mux.HandleFunc("/api/v1/slots/meeting", slotsHandler.Meeting)
	mux.Handle("/api/v1/availability", requireAdmin(http.HandlerFunc(adminHandler.UpdateAvailability)))
	mux.Handle("/api/v1/events", requireAdmin(http.HandlerFunc(adminHandler.CreateEvent)))
	mux.Handle("/api/v1/events/cancel", requireAdmin(http.HandlerFunc(adminHandler.CancelEvent)))

	middlewares := []httpx.Middleware{
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1 << 20),
		httpx.WithTimeout(15 * time.Second),
	}
	if rdb != nil {
		limiter := httpx.NewRedisRateLimiter(rdb, 120, time.Minute, service)
		middlewares = append(middlewares, limiter.Middleware(logger, true))
	} else {
		limiter := httpx.NewRateLimiter(120, time.Minute)
		middlewares = append(middlewares, limiter.Middleware())
	}
	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
