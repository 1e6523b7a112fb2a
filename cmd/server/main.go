// Package main implements the entry point for the remind API server, which
// manages scheduled tasks and drives their time-based reminders.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/platform/postgres"
	"github.com/phrazzld/remind-api/internal/push"
	"github.com/phrazzld/remind-api/internal/scheduler"
	"github.com/phrazzld/remind-api/internal/service"
	"github.com/phrazzld/remind-api/internal/store"
)

// digestInterval is the cadence of push digest evaluation. It matches the
// scheduler tick so pre-task alert windows are never skipped over.
const digestInterval = 60 * time.Second

// application bundles the configured dependencies the server runs with.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	taskStore       store.TaskStore
	reminderStore   store.ReminderStore
	pushLogStore    store.PushLogStore
	taskService     service.TaskService
	reminderService service.ReminderService
	scheduler       *scheduler.Scheduler
	digest          *push.Digest
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}()

	if err := runMigrations(app.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return app.serve()
}

// newApplication opens the database and wires stores, services, the
// scheduler, and the push digest together.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db)
	reminderStore := postgres.NewPostgresReminderStore(db)
	pushLogStore := postgres.NewPostgresPushLogStore(db)

	clock := scheduler.SystemClock()

	sched := scheduler.New(
		db,
		taskStore,
		reminderStore,
		scheduler.Config{
			TickInterval: time.Duration(cfg.Scheduler.TickIntervalSeconds) * time.Second,
			MisfireGrace: time.Duration(cfg.Scheduler.MisfireGraceSeconds) * time.Second,
		},
		clock,
		appLogger,
	)

	pushClient := push.NewClient(cfg.Push.OneSignalAppID, cfg.Push.OneSignalAPIKey, appLogger)
	digest := push.NewDigest(
		taskStore,
		pushLogStore,
		pushClient,
		cfg.Push.TZOffsetMinutes,
		clock,
		appLogger,
	)

	return &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		taskStore:       taskStore,
		reminderStore:   reminderStore,
		pushLogStore:    pushLogStore,
		taskService:     service.NewTaskService(db, taskStore, appLogger),
		reminderService: service.NewReminderService(taskStore, reminderStore, appLogger),
		scheduler:       sched,
		digest:          digest,
	}, nil
}

// serve runs the HTTP server, the reminder scheduler, and the push digest
// until a shutdown signal arrives, then shuts all three down together.
func (app *application) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := app.scheduler.Run(groupCtx); err != nil && err != context.Canceled {
			return fmt.Errorf("scheduler failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := app.digest.Run(groupCtx, digestInterval); err != nil && err != context.Canceled {
			return fmt.Errorf("push digest failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	app.logger.Info("server shutdown completed")
	return nil
}
