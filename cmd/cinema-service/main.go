package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/config"
	"ms-cinema/internal/database"
	"ms-cinema/internal/database/migrations"
	"ms-cinema/internal/event"
	eventdb "ms-cinema/internal/event/db"
	"ms-cinema/internal/event/event_api"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/purchase"
	purchasedb "ms-cinema/internal/purchase/db"
	"ms-cinema/internal/purchase/purchase_api"
	purchaseredis "ms-cinema/internal/purchase/redis"
	"ms-cinema/internal/show"
	showdb "ms-cinema/internal/show/db"
	"ms-cinema/internal/show/show_api"
	"ms-cinema/internal/tickets"
	ticketdb "ms-cinema/internal/tickets/db"
	qr "ms-cinema/internal/tickets/qr_generator"
	"ms-cinema/internal/tickets/ticket_api"
	"ms-cinema/internal/user"
	userdb "ms-cinema/internal/user/db"
	"ms-cinema/internal/user/user_api"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	envErr := godotenv.Load()

	cfg, cfgErr := config.Load()
	logOpts := logger.Options{Dir: "logs", Service: "cinema-service", MinLevel: logger.INFO}
	if cfg != nil {
		logOpts.Dir = cfg.Log.Dir
		logOpts.MinLevel = logger.ParseLevel(cfg.Log.Level)
	}
	log, err := logger.NewLogger(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting Cinema Service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if cfgErr != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid configuration: %v", cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Migrations.Auto {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}

	var redisClient *redis.Client
	var seatLocks *purchaseredis.Redis
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, PoolSize: 10})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, continuing without seat locks: %v", cfg.Redis.Addr, err))
			redisClient.Close()
			redisClient = nil
		} else {
			log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
			seatLocks = purchaseredis.NewRedis(redisClient, cfg.Redis.SeatLockTTL, log)
			defer redisClient.Close()
		}
	}

	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Kafka.Brokers))

		topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := kafka.EnsureTopicsExist(topicCtx, cfg.Kafka.Brokers, kafka.Topics(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		cancel()
	}

	sessionTokens := auth.NewSessionTokens(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	verifiers := []auth.TokenVerifier{sessionTokens}
	if cfg.Auth.OIDCIssuer != "" {
		oidcVerifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer)
		if err != nil {
			log.Fatal("AUTH", err.Error())
		}
		verifiers = append(verifiers, oidcVerifier)
		log.Info("AUTH", fmt.Sprintf("Accepting ID tokens from %s", cfg.Auth.OIDCIssuer))
	}

	purchaseStore := purchasedb.New(bunDB)
	var locker purchase.SeatLocker
	if seatLocks != nil {
		locker = seatLocks
	}
	purchaseService := purchase.NewPurchaseService(purchaseStore, locker, publisher, log)
	sweeper := purchase.NewSweeper(purchaseStore, publisher, log)
	ticketService := tickets.NewTicketService(
		qr.NewQRGenerator(cfg.Auth.JWTSecret, cfg.Auth.QRTTL),
		purchaseService,
		sweeper,
		ticketdb.New(bunDB),
		log,
	)

	handler := newRouter(routerDeps{
		Logger:         log,
		Verifiers:      verifiers,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ping:           bunDB.PingContext,
		Users:          user_api.NewHandler(user.NewUserService(userdb.New(bunDB), sessionTokens, cfg.Auth.BcryptCost, log), log),
		Purchases:      purchase_api.NewHandler(purchaseService, sweeper, log),
		Tickets:        ticket_api.NewHandler(ticketService, log),
		Shows:          show_api.NewHandler(show.NewShowService(showdb.New(bunDB), log), log),
		Events:         event_api.NewHandler(event.NewEventService(eventdb.New(bunDB), log), log),
	})

	var wg sync.WaitGroup
	if cfg.Scheduler.Enabled {
		var marker purchase.ReminderMarker
		if seatLocks != nil {
			marker = seatLocks
		}
		scheduler := purchase.NewScheduler(sweeper, purchaseStore, marker, publisher, log,
			cfg.Scheduler.SweepInterval, cfg.Scheduler.ReminderWindow)
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Run(ctx)
		}()
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Cinema Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}
	wg.Wait()
	log.Info("APP", "Cinema Service shutdown complete")
}

// runMigrations gives golang-migrate its own connection because closing the
// migrator closes the handle it was given.
func runMigrations(cfg *config.Config, log *logger.Logger) error {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	runner, err := migrations.Open(sqldb, log)
	if err != nil {
		sqldb.Close()
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("MIGRATE", err.Error())
		}
	}()
	return runner.Sync(cfg.Migrations.Seed)
}
