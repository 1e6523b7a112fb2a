package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/remind-api/internal/domain/schedule"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// ErrTickInProgress is returned by Tick when the previous tick has not
// finished yet. The caller skips the tick; it is never queued.
var ErrTickInProgress = errors.New("scheduler tick already in progress")

// Config holds the scheduler's timing settings.
type Config struct {
	// TickInterval is the cadence of the reminder tick.
	TickInterval time.Duration

	// MisfireGrace bounds how late a tick may start before it is dropped
	// instead of run.
	MisfireGrace time.Duration
}

// DefaultConfig returns a Config with the standard 60-second cadence.
func DefaultConfig() Config {
	return Config{
		TickInterval: 60 * time.Second,
		MisfireGrace: 45 * time.Second,
	}
}

// Scheduler owns the periodic reminder tick. It holds its own timer and is
// injected with the store and a clock; nothing about its state is
// process-global.
type Scheduler struct {
	db        *sql.DB
	tasks     store.TaskStore
	reminders store.ReminderStore
	clock     Clock
	config    Config
	logger    *slog.Logger

	// runTx defaults to store.RunInTransaction; tests substitute a runner
	// that hands the tick fake stores without a real database.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error

	// mu enforces single-flight execution of ticks.
	mu sync.Mutex
}

// New creates a Scheduler. If clock is nil the system clock is used; if any
// config field is zero the corresponding default applies.
func New(
	db *sql.DB,
	tasks store.TaskStore,
	reminders store.ReminderStore,
	config Config,
	clock Clock,
	log *slog.Logger,
) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	defaults := DefaultConfig()
	if config.TickInterval == 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.MisfireGrace == 0 {
		config.MisfireGrace = defaults.MisfireGrace
	}
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		db:        db,
		tasks:     tasks,
		reminders: reminders,
		clock:     clock,
		config:    config,
		logger:    log.With(slog.String("component", "scheduler")),
		runTx:     store.RunInTransaction,
	}
}

// Run executes ticks on the configured cadence until the context is
// canceled. A tick that fails is logged and the loop continues; the next
// tick retries against unchanged persisted state. A tick delivered later
// than the misfire grace is dropped, not queued.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started",
		slog.Duration("tick_interval", s.config.TickInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()

		case firedAt := <-ticker.C:
			// Ticker timestamps are wall-clock instants, so the delay is
			// measured against the wall clock. The injected clock governs
			// reminder arithmetic only.
			if delay := time.Since(firedAt); delay > s.config.MisfireGrace {
				s.logger.Warn("dropping tick past misfire grace",
					slog.Duration("delay", delay))
				continue
			}

			if err := s.Tick(ctx); err != nil && !errors.Is(err, ErrTickInProgress) {
				s.logger.Error("tick failed, state unchanged until next tick",
					slog.String("error", err.Error()))
			}
		}
	}
}

// Tick runs one pass of the reminder lifecycle inside a single transaction:
// promote fire candidates to due, re-arm acknowledged recurring reminders,
// and flag missed tasks. Any failure rolls back the whole pass. Returns
// ErrTickInProgress when the previous tick is still executing.
func (s *Scheduler) Tick(ctx context.Context) error {
	if !s.mu.TryLock() {
		s.logger.Warn("skipping tick, previous tick still running")
		return ErrTickInProgress
	}
	defer s.mu.Unlock()

	now := s.clock.Now()
	ctx = logger.WithLogger(ctx, s.logger)

	return s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		reminders := s.reminders.WithTx(tx)

		if err := s.promoteFireCandidates(ctx, reminders, now); err != nil {
			return fmt.Errorf("promoting fire candidates: %w", err)
		}

		if err := s.rearmAcknowledged(ctx, tasks, reminders, now); err != nil {
			return fmt.Errorf("re-arming acknowledged reminders: %w", err)
		}

		if err := s.flagMissedTasks(ctx, tasks, reminders, now); err != nil {
			return fmt.Errorf("flagging missed tasks: %w", err)
		}

		return nil
	})
}

// promoteFireCandidates transitions pending and snoozed reminders whose
// next_fire_at falls within the activation window to due. The window filter
// makes repeated runs idempotent: a promoted reminder is no longer pending
// or snoozed and is excluded from the next query.
func (s *Scheduler) promoteFireCandidates(
	ctx context.Context,
	reminders store.ReminderStore,
	now time.Time,
) error {
	candidates, err := reminders.ListFireCandidates(
		ctx,
		now.Add(-schedule.WindowBehind),
		now.Add(schedule.WindowAhead),
	)
	if err != nil {
		return err
	}

	for _, reminder := range candidates {
		if err := reminder.Fire(now); err != nil {
			return err
		}
		if err := reminders.Update(ctx, reminder); err != nil {
			return err
		}

		s.logger.Info("reminder fired",
			slog.String("reminder_id", reminder.ID.String()),
			slog.String("task_id", reminder.TaskID.String()),
			slog.Int("fire_count", reminder.FireCount))
	}

	return nil
}

// rearmAcknowledged computes a fresh fire instant for every acknowledged
// recurring reminder whose task is still incomplete and resets it to
// pending. Reminders whose task was completed or deleted, or whose
// recurrence has no further occurrence, stay acknowledged and inert.
func (s *Scheduler) rearmAcknowledged(
	ctx context.Context,
	tasks store.TaskStore,
	reminders store.ReminderStore,
	now time.Time,
) error {
	acked, err := reminders.ListAcknowledgedRecurring(ctx)
	if err != nil {
		return err
	}

	for _, reminder := range acked {
		task, err := tasks.GetByID(ctx, reminder.TaskID)
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return err
		}
		if task.IsCompleted {
			continue
		}

		// Dates are already stored relative to the creation-time offset;
		// the recompute runs on plain UTC.
		nextFire, ok := schedule.NextFireAt(schedule.NextFireInput{
			Type:            reminder.Type,
			ScheduledDate:   task.ScheduledDate,
			ScheduledTime:   task.ScheduledTime,
			BeforeMinutes:   reminder.BeforeMinutes,
			TZOffsetMinutes: 0,
			Recurrence:      reminder.Recurrence,
			RecurrenceDays:  reminder.RecurrenceDays,
			LastFiredAt:     reminder.FiredAt,
			Now:             now,
		})
		if !ok {
			continue
		}

		if err := reminder.Rearm(nextFire); err != nil {
			return err
		}
		if err := reminders.Update(ctx, reminder); err != nil {
			return err
		}

		s.logger.Info("reminder re-armed",
			slog.String("reminder_id", reminder.ID.String()),
			slog.Time("next_fire_at", nextFire))
	}

	return nil
}
