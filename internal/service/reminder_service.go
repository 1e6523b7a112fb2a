package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/domain/schedule"
	"github.com/phrazzld/remind-api/internal/store"
)

// minTZOffsetMinutes and maxTZOffsetMinutes bound the accepted timezone
// offsets to the real-world range (UTC-12:00 through UTC+14:00).
const (
	minTZOffsetMinutes = -720
	maxTZOffsetMinutes = 840
)

// CreateReminderInput carries the caller-supplied reminder configuration.
// TZOffsetMinutes is the client's offset from UTC in minutes (e.g. +330 for
// UTC+5:30) and is consumed at creation time only; it is never stored.
type CreateReminderInput struct {
	TaskID          uuid.UUID
	Type            domain.ReminderType
	BeforeMinutes   int
	TZOffsetMinutes int
	Recurrence      domain.Recurrence
	RecurrenceDays  string
}

// ReminderService provides reminder creation, lifecycle transitions, and due
// queries. Fire and re-arm transitions belong to the scheduler, not here.
type ReminderService interface {
	// CreateReminder validates the configuration, computes the initial fire
	// instant, and persists a pending reminder.
	CreateReminder(ctx context.Context, in CreateReminderInput) (*domain.Reminder, error)

	// ListTaskReminders retrieves all reminders configured for a task.
	ListTaskReminders(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error)

	// DueReminders retrieves all reminders currently in due status together
	// with the server's UTC instant, so clients can render relative times
	// without trusting their own clock.
	DueReminders(ctx context.Context) ([]*domain.Reminder, time.Time, error)

	// AcknowledgeReminder transitions a due reminder to acknowledged.
	AcknowledgeReminder(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)

	// SnoozeReminder postpones a due reminder by the given number of minutes.
	SnoozeReminder(ctx context.Context, id uuid.UUID, minutes int) (*domain.Reminder, error)

	// DeleteReminder removes a reminder configuration outright.
	DeleteReminder(ctx context.Context, id uuid.UUID) error
}

// reminderServiceImpl implements the ReminderService interface.
type reminderServiceImpl struct {
	tasks     store.TaskStore
	reminders store.ReminderStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewReminderService creates a new ReminderService backed by the given stores.
func NewReminderService(
	tasks store.TaskStore,
	reminders store.ReminderStore,
	log *slog.Logger,
) ReminderService {
	if log == nil {
		log = slog.Default()
	}
	return &reminderServiceImpl{
		tasks:     tasks,
		reminders: reminders,
		logger:    log.With(slog.String("component", "reminder_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateReminder implements ReminderService.CreateReminder
func (s *reminderServiceImpl) CreateReminder(
	ctx context.Context,
	in CreateReminderInput,
) (*domain.Reminder, error) {
	if err := validateReminderInput(in); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted {
		return nil, ErrTaskCompleted
	}

	now := s.now()

	var fireAt time.Time
	if in.Type == domain.ReminderTypeMissed {
		// Missed reminders created through the API fire at the fixed
		// server-side slot, same as the ones the scheduler creates.
		fireAt = schedule.MissedFireAtUTC(now)
	} else {
		computed, ok := schedule.NextFireAt(schedule.NextFireInput{
			Type:            in.Type,
			ScheduledDate:   task.ScheduledDate,
			ScheduledTime:   task.ScheduledTime,
			BeforeMinutes:   in.BeforeMinutes,
			TZOffsetMinutes: in.TZOffsetMinutes,
			Recurrence:      in.Recurrence,
			RecurrenceDays:  in.RecurrenceDays,
			Now:             now,
		})
		if !ok {
			return nil, ErrPastFireTime
		}
		fireAt = computed
	}

	reminder, err := domain.NewReminder(
		in.TaskID,
		in.Type,
		in.BeforeMinutes,
		in.Recurrence,
		in.RecurrenceDays,
		fireAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	s.logger.Info("reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("task_id", in.TaskID.String()),
		slog.String("type", string(in.Type)),
		slog.Time("next_fire_at", fireAt))

	return reminder, nil
}

// ListTaskReminders implements ReminderService.ListTaskReminders
func (s *reminderServiceImpl) ListTaskReminders(
	ctx context.Context,
	taskID uuid.UUID,
) ([]*domain.Reminder, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.reminders.ListByTask(ctx, taskID)
}

// DueReminders implements ReminderService.DueReminders
func (s *reminderServiceImpl) DueReminders(
	ctx context.Context,
) ([]*domain.Reminder, time.Time, error) {
	due, err := s.reminders.ListDue(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return due, s.now(), nil
}

// AcknowledgeReminder implements ReminderService.AcknowledgeReminder
func (s *reminderServiceImpl) AcknowledgeReminder(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := reminder.Acknowledge(s.now()); err != nil {
		return nil, err
	}

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, err
	}

	return reminder, nil
}

// SnoozeReminder implements ReminderService.SnoozeReminder
func (s *reminderServiceImpl) SnoozeReminder(
	ctx context.Context,
	id uuid.UUID,
	minutes int,
) (*domain.Reminder, error) {
	if !schedule.SnoozeOptionsMinutes[minutes] {
		return nil, ErrInvalidSnoozeDuration
	}

	reminder, err := s.reminders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := reminder.Snooze(s.now(), time.Duration(minutes)*time.Minute); err != nil {
		return nil, err
	}

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, err
	}

	s.logger.Info("reminder snoozed",
		slog.String("reminder_id", reminder.ID.String()),
		slog.Int("minutes", minutes))

	return reminder, nil
}

// DeleteReminder implements ReminderService.DeleteReminder
func (s *reminderServiceImpl) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	return s.reminders.Delete(ctx, id)
}

// validateReminderInput rejects configurations outside the closed option
// sets before any store access.
func validateReminderInput(in CreateReminderInput) error {
	switch in.Type {
	case domain.ReminderTypeExact, domain.ReminderTypeBefore, domain.ReminderTypeMissed:
	default:
		return domain.ErrReminderTypeInvalid
	}

	switch in.Recurrence {
	case domain.RecurrenceNone, domain.RecurrenceDaily, domain.RecurrenceWeekly,
		domain.RecurrenceWeekdays, domain.RecurrenceCustom:
	default:
		return domain.ErrRecurrenceInvalid
	}

	if in.Recurrence == domain.RecurrenceCustom {
		if _, err := domain.ParseRecurrenceDays(in.RecurrenceDays); err != nil {
			return err
		}
	}

	if in.Type == domain.ReminderTypeBefore && !schedule.BeforeOptionsMinutes[in.BeforeMinutes] {
		return ErrInvalidBeforeMinutes
	}

	if in.TZOffsetMinutes < minTZOffsetMinutes || in.TZOffsetMinutes > maxTZOffsetMinutes {
		return ErrInvalidTZOffset
	}

	return nil
}
