package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contestbot/internal/config"
	"contestbot/internal/handler"
	"contestbot/internal/middleware"
	"contestbot/internal/repository/postgres"
	"contestbot/internal/service"
	"contestbot/internal/session"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Contest Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("session_backend", cfg.Session.Backend),
		zap.Duration("session_ttl", cfg.Session.TTL),
	)

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Dialogue sessions
	sessions, closeSessions, err := newSessionStore(cfg.Session)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeSessions()

	// Initialize repositories
	contestRepo := postgres.NewContestRepo(db)
	autoAcceptRepo := postgres.NewAutoAcceptRepo(db)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.BotToken,
		Poller: &tele.LongPoller{
			Timeout: 10 * time.Second,
			AllowedUpdates: []string{
				"message",
				"channel_post",
				"callback_query",
				"chat_join_request",
			},
		},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil {
				fields = append(fields, zap.Int("update_id", c.Update().ID))
			}
			logger.Error("Unhandled bot error", fields...)
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	// Initialize services
	gateway := handler.NewTelegramGateway(bot, logger)
	checker := service.NewStubSubscriptionChecker()
	propagator := service.NewPropagator(gateway, logger)

	dialogueService := service.NewDialogueService(sessions, contestRepo, autoAcceptRepo, gateway, bot.Me.Username, logger)
	participationService := service.NewParticipationService(contestRepo, checker, propagator, logger)
	contestService := service.NewContestService(contestRepo, logger)
	autoAcceptService := service.NewAutoAcceptService(autoAcceptRepo, gateway, logger)
	janitorService := service.NewJanitorService(sessions, logger)

	// Initialize handler
	bot.Use(middleware.Logger(logger))

	h := handler.NewHandler(
		bot,
		dialogueService,
		participationService,
		contestService,
		autoAcceptService,
		checker,
		gateway,
		bot.Me.Username,
		logger,
	)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start cleanup job in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runCleanupJob(ctx, janitorService, cleanupInterval(cfg.Session.TTL), logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// newSessionStore builds the configured dialogue session backend
func newSessionStore(cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore(cfg.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	store, err := session.NewRedisStore(client, cfg.TTL)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return store, func() { client.Close() }, nil
}

// cleanupInterval runs the janitor a few times per TTL, at most hourly
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval <= 0 || interval > time.Hour {
		return time.Hour
	}
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}

// runCleanupJob periodically purges abandoned dialogue sessions
func runCleanupJob(ctx context.Context, janitor *service.JanitorService, interval time.Duration, logger *zap.Logger) {
	// Run cleanup once at startup
	if err := janitor.CleanupStaleSessions(); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			logger.Debug("Running scheduled cleanup")
			if err := janitor.CleanupStaleSessions(); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
