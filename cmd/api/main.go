package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marzy-142/geocasa-bohol-sub001/internal/adapters"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/brokers"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/clients"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/email"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/events"
	apphttp "github.com/marzy-142/geocasa-bohol-sub001/internal/http"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/http/router"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/inquiries"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/notification"
	"github.com/marzy-142/geocasa-bohol-sub001/internal/properties"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/clock"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/config"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/db"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/logger"
	"github.com/marzy-142/geocasa-bohol-sub001/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module queues emails through the outbox and subscribes to
	// domain events for in-app notices.
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	propertiesModule := properties.NewModule(pool)
	notificationModule.SetPropertyTitleReader(adapters.NewPropertyTitleReader(propertiesModule.Repository()))

	brokersModule := brokers.NewModule(
		pool,
		adapters.NewPropertyAssignmentWriter(propertiesModule.Repository()),
		nil, // client assignment writer wired below once the clients module exists
		eventBus,
		log,
	)
	notificationModule.SetBrokerDirectory(adapters.NewBrokerDirectory(brokersModule.Repository()))

	// Inquiries and clients reference each other (account linking sweeps
	// inquiries; intake resolves clients), so the inquiries module is built
	// first and its repository adapted into the clients module.
	inquiriesModule := inquiries.NewModule(
		pool,
		inquiries.Collaborators{
			Properties: adapters.NewPropertyFinder(propertiesModule.Repository()),
			Clients:    nil, // set below
			Brokers:    adapters.NewBrokerAssigner(brokersModule.Service()),
			Notifier:   adapters.NewInquiryNotifier(notificationModule),
		},
		eventBus,
		val,
		clock.Real{},
		cfg,
		log,
	)

	clientsModule := clients.NewModule(
		pool,
		adapters.NewInquiryLinksAdapter(inquiriesModule.Repository()),
		eventBus,
		log,
	)

	inquiriesModule.SetClientResolver(adapters.NewClientResolver(clientsModule.Service()))
	brokersModule.SetClientAssigner(adapters.NewClientAssignmentWriter(clientsModule.Repository()))

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			inquiriesModule,
			propertiesModule,
			clientsModule,
			brokersModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
