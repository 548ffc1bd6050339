package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/config"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/events"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/handler"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/idempotency"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/router"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/ws"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	log := logger.NewLogger()

	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "no .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "hotel API starting up")
	cfg := config.Load()

	ctx := context.Background()

	log.LogProcess("DATABASE", "connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DATABASE", "unable to create pool: "+err.Error())
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("DATABASE", "unable to ping database: "+err.Error())
	}

	log.LogProcess("EVENTS", "opening "+cfg.EventsDriver+" publisher")
	broker, err := events.Open(events.Options{
		Driver:       cfg.EventsDriver,
		KafkaBrokers: cfg.KafkaBrokers,
		RabbitMQURL:  cfg.RabbitMQURL,
	}, log)
	if err != nil {
		log.Fatal("EVENTS", "unable to open publisher: "+err.Error())
	}
	defer broker.Close()

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Close()

	var idem handler.IdempotencyGuard
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("REDIS", "ping failed, idempotency keys will pass through until it recovers: "+err.Error())
		}
		defer client.Close()
		idem = idempotency.NewGuard(client)
		log.LogProcess("REDIS", "idempotency guard on "+cfg.RedisAddr)
	}

	r := router.New(cfg, router.Deps{
		Queries:     database.New(pool),
		Pool:        pool,
		Hub:         hub,
		Events:      events.Fanout{hub, broker},
		Idempotency: idem,
		Log:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.LogProcess("SERVER", "listening on :"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "server failed: "+err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.LogProcess("SHUTDOWN", "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SHUTDOWN", "forced shutdown: "+err.Error())
	}
	log.LogProcess("SHUTDOWN", "server exited")
}
