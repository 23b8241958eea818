package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-result/internal/api"
	"github.com/akylbek/payment-system/payment-result/internal/client"
	"github.com/akylbek/payment-system/payment-result/internal/config"
	"github.com/akylbek/payment-system/payment-result/internal/deeplink"
	"github.com/akylbek/payment-system/payment-result/internal/events"
	"github.com/akylbek/payment-system/payment-result/internal/handlers"
	"github.com/akylbek/payment-system/payment-result/internal/pending"
	"github.com/akylbek/payment-system/payment-result/internal/repository"
	"github.com/akylbek/payment-system/payment-result/internal/service"
	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
	"github.com/akylbek/payment-system/payment-result/internal/workers"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize telemetry
	if err := telemetry.InitTelemetry("payment-result", cfg.JaegerEndpoint); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Result service")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewPaymentResultRepository(db)
	if err := repo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// Connect to Kafka
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers),
		Topic:    cfg.ResultTopic,
		Balancer: &kafka.Hash{},
	}
	defer kafkaWriter.Close()

	pool, err := workers.NewPool(cfg.WorkerPoolSize)
	if err != nil {
		telemetry.Logger.Fatal("Failed to start worker pool", zap.Error(err))
	}
	defer pool.Release()

	backend := client.NewBackend(cfg.BackendURL, &http.Client{})
	slot := pending.NewRedisSlot(redisClient, cfg.PendingSignalTTL)

	resolver := service.NewResolver(
		backend,
		backend,
		slot,
		service.NewRedisClearLedger(redisClient, cfg.CartClearClaimTTL),
		pool,
		service.Options{
			CacheLookupTimeout: cfg.CacheLookupTimeout,
			OrderLookupTimeout: cfg.OrderLookupTimeout,
			CartClearTimeout:   cfg.CartClearTimeout,
		},
		repo,
		events.NewKafkaPublisher(kafkaWriter),
	)

	// Deep links arrive over NATS and HTTP
	intake := deeplink.NewIntake(slot)
	sub, err := intake.Subscribe(nc, cfg.DeepLinkSubject)
	if err != nil {
		telemetry.Logger.Fatal("Failed to subscribe to deep links", zap.Error(err))
	}
	defer sub.Unsubscribe()

	r := api.NewRouter(handlers.NewPaymentResultHandler(resolver, repo, intake))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		telemetry.Logger.Info("Payment Result service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
