package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReminderType describes what instant a reminder is anchored to.
type ReminderType string

// The closed set of reminder types.
const (
	// ReminderTypeExact fires at the task's scheduled date and time.
	ReminderTypeExact ReminderType = "exact"

	// ReminderTypeBefore fires BeforeMinutes minutes ahead of the task's
	// scheduled date and time.
	ReminderTypeBefore ReminderType = "before"

	// ReminderTypeMissed fires at 09:00 the morning after an incomplete
	// task's scheduled date has passed.
	ReminderTypeMissed ReminderType = "missed"
)

// Recurrence describes whether and how a reminder re-arms after being
// acknowledged.
type Recurrence string

// The closed set of recurrence policies.
const (
	// RecurrenceNone marks a one-shot reminder. Once acknowledged it is
	// terminal and never re-armed.
	RecurrenceNone Recurrence = ""

	// RecurrenceDaily repeats every day at the same time.
	RecurrenceDaily Recurrence = "daily"

	// RecurrenceWeekly repeats every 7 days.
	RecurrenceWeekly Recurrence = "weekly"

	// RecurrenceWeekdays repeats Monday through Friday only.
	RecurrenceWeekdays Recurrence = "weekdays"

	// RecurrenceCustom repeats on the weekday indices listed in
	// RecurrenceDays (0=Mon ... 6=Sun).
	RecurrenceCustom Recurrence = "custom"
)

// ReminderStatus is the reminder's position in its lifecycle. Only the four
// states below exist; transitions between them are enforced by the methods
// on Reminder and illegal transitions fail with a StateConflictError.
type ReminderStatus string

// The closed set of reminder states.
const (
	// ReminderStatusPending means the reminder is armed and waiting for its
	// fire instant.
	ReminderStatusPending ReminderStatus = "pending"

	// ReminderStatusDue means the reminder has fired and is waiting to be
	// shown to and acknowledged by the user.
	ReminderStatusDue ReminderStatus = "due"

	// ReminderStatusAcknowledged means the user has seen the reminder.
	// Recurring reminders are re-armed from this state by the scheduler;
	// one-shot reminders stay here forever.
	ReminderStatusAcknowledged ReminderStatus = "acknowledged"

	// ReminderStatusSnoozed means the user postponed a due reminder; it
	// re-fires once SnoozeUntil passes.
	ReminderStatusSnoozed ReminderStatus = "snoozed"
)

// Reminder-specific validation errors
var (
	// ErrReminderIDEmpty is returned when a reminder ID is empty or nil.
	ErrReminderIDEmpty = fmt.Errorf("%w: reminder ID cannot be empty", ErrValidation)

	// ErrReminderTaskIDEmpty is returned when a reminder's task ID is empty or nil.
	ErrReminderTaskIDEmpty = fmt.Errorf("%w: reminder task ID cannot be empty", ErrValidation)

	// ErrReminderTypeInvalid is returned for a reminder type outside the
	// enumerated set.
	ErrReminderTypeInvalid = fmt.Errorf("%w: unrecognized reminder type", ErrValidation)

	// ErrRecurrenceInvalid is returned for a recurrence outside the
	// enumerated set.
	ErrRecurrenceInvalid = fmt.Errorf("%w: unrecognized recurrence", ErrValidation)

	// ErrRecurrenceDaysInvalid is returned when recurrence_days is missing,
	// malformed, or contains indices outside 0..6 for a custom recurrence.
	ErrRecurrenceDaysInvalid = fmt.Errorf(
		"%w: recurrence days must be comma-separated indices 0 (Mon) through 6 (Sun)",
		ErrValidation,
	)
)

// Reminder is one reminder configuration attached to a task. Configuration
// fields (Type, BeforeMinutes, Recurrence, RecurrenceDays) are set at
// creation and never mutated; only the state fields change afterwards, and
// only through the transition methods below.
type Reminder struct {
	ID     uuid.UUID `json:"id"`
	TaskID uuid.UUID `json:"task_id"`

	// Configuration (immutable after creation)
	Type           ReminderType `json:"reminder_type"`
	BeforeMinutes  int          `json:"before_minutes"`
	Recurrence     Recurrence   `json:"recurrence"`
	RecurrenceDays string       `json:"recurrence_days,omitempty"`

	// State
	Status         ReminderStatus `json:"status"`
	NextFireAt     *time.Time     `json:"next_fire_at,omitempty"`
	SnoozeUntil    *time.Time     `json:"snooze_until,omitempty"`
	FireCount      int            `json:"fire_count"`
	FiredAt        *time.Time     `json:"fired_at,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewReminder creates a pending Reminder for the given task with the given
// configuration and initial fire instant. Returns an error if validation
// fails.
func NewReminder(
	taskID uuid.UUID,
	reminderType ReminderType,
	beforeMinutes int,
	recurrence Recurrence,
	recurrenceDays string,
	nextFireAt time.Time,
) (*Reminder, error) {
	fireAt := nextFireAt.UTC()
	reminder := &Reminder{
		ID:             uuid.New(),
		TaskID:         taskID,
		Type:           reminderType,
		BeforeMinutes:  beforeMinutes,
		Recurrence:     recurrence,
		RecurrenceDays: recurrenceDays,
		Status:         ReminderStatusPending,
		NextFireAt:     &fireAt,
		CreatedAt:      time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the Reminder has valid data.
// Returns an error if any field fails validation.
func (r *Reminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReminderIDEmpty
	}

	if r.TaskID == uuid.Nil {
		return ErrReminderTaskIDEmpty
	}

	switch r.Type {
	case ReminderTypeExact, ReminderTypeBefore, ReminderTypeMissed:
	default:
		return ErrReminderTypeInvalid
	}

	switch r.Recurrence {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceWeekdays, RecurrenceCustom:
	default:
		return ErrRecurrenceInvalid
	}

	if r.Recurrence == RecurrenceCustom {
		if _, err := ParseRecurrenceDays(r.RecurrenceDays); err != nil {
			return err
		}
	}

	return nil
}

// IsRecurring reports whether the reminder re-arms after acknowledgment.
func (r *Reminder) IsRecurring() bool {
	return r.Recurrence != RecurrenceNone
}

// Fire transitions the reminder from pending or snoozed to due. This is the
// only transition that increments FireCount; it does so by exactly one.
func (r *Reminder) Fire(now time.Time) error {
	if r.Status != ReminderStatusPending && r.Status != ReminderStatusSnoozed {
		return NewStateConflictError(ReminderStatusPending, r.Status)
	}

	firedAt := now.UTC()
	r.Status = ReminderStatusDue
	r.FiredAt = &firedAt
	r.FireCount++
	r.SnoozeUntil = nil
	return nil
}

// Acknowledge transitions a due reminder to acknowledged. For one-shot
// reminders this state is terminal; recurring reminders are re-armed from it
// by the scheduler's next tick.
func (r *Reminder) Acknowledge(now time.Time) error {
	if r.Status != ReminderStatusDue {
		return NewStateConflictError(ReminderStatusDue, r.Status)
	}

	ackedAt := now.UTC()
	r.Status = ReminderStatusAcknowledged
	r.AcknowledgedAt = &ackedAt
	return nil
}

// Snooze transitions a due reminder to snoozed for the given duration.
// SnoozeUntil and NextFireAt are both set to now + d, keeping the invariant
// that a snoozed reminder's next fire instant is its snooze deadline.
func (r *Reminder) Snooze(now time.Time, d time.Duration) error {
	if r.Status != ReminderStatusDue {
		return NewStateConflictError(ReminderStatusDue, r.Status)
	}

	until := now.UTC().Add(d)
	r.Status = ReminderStatusSnoozed
	r.SnoozeUntil = &until
	r.NextFireAt = &until
	return nil
}

// Rearm transitions an acknowledged recurring reminder back to pending with
// a freshly computed fire instant. One-shot reminders cannot be re-armed.
func (r *Reminder) Rearm(nextFireAt time.Time) error {
	if r.Status != ReminderStatusAcknowledged {
		return NewStateConflictError(ReminderStatusAcknowledged, r.Status)
	}
	if !r.IsRecurring() {
		return NewStateConflictError(ReminderStatusAcknowledged, r.Status)
	}

	fireAt := nextFireAt.UTC()
	r.Status = ReminderStatusPending
	r.NextFireAt = &fireAt
	r.AcknowledgedAt = nil
	return nil
}

// ParseRecurrenceDays parses a comma-separated weekday list such as "0,2,4"
// into a set of indices where 0 is Monday and 6 is Sunday. An empty or
// malformed list is a validation error.
func ParseRecurrenceDays(days string) (map[int]bool, error) {
	parsed := make(map[int]bool)
	for _, part := range strings.Split(days, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 || idx > 6 {
			return nil, ErrRecurrenceDaysInvalid
		}
		parsed[idx] = true
	}
	if len(parsed) == 0 {
		return nil, ErrRecurrenceDaysInvalid
	}
	return parsed, nil
}
