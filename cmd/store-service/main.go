package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/app"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/imagestore"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[store-service] ", log.LstdFlags|log.Lmicroseconds)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("migrations: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer pool.Close()

	tokens, err := auth.NewJWTIssuer(cfg.TokenKey, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("token issuer: %v", err)
	}

	var opts app.Options

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable, product cache still enabled: %v", err)
		}
		opts.Cache = catalog.NewRedisCache(rdb, cfg.CacheTTL)
	}

	if cfg.ImageStoreURL != "" {
		opts.Images = imagestore.NewClient(cfg.ImageStoreURL, cfg.ImageStoreTimeout)
	}

	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL, logger)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		defer conn.Close()

		publisher, err := events.NewPublisher(conn, events.NewSequenceRepository(pool), "")
		if err != nil {
			logger.Fatalf("publisher: %v", err)
		}
		defer publisher.Close()
		opts.Publisher = publisher
	} else {
		logger.Printf("RABBITMQ_URL not set, order events disabled")
	}

	a := app.New(cfg, pool, tokens, logger, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(a.Router, "store-service"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
}
