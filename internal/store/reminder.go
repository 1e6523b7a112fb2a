package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
)

// ReminderStore defines the interface for reminder data persistence.
// The scheduler drives all of its per-tick reads through the two List*
// methods below, which are backed by the (status, next_fire_at) index.
type ReminderStore interface {
	// Create saves a new reminder to the store.
	// Returns ErrInvalidEntity if the reminder fails domain validation.
	Create(ctx context.Context, reminder *domain.Reminder) error

	// GetByID retrieves a reminder by its unique ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)

	// ListByTask retrieves all reminders configured for a task, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error)

	// ListDue retrieves all reminders currently in due status, ordered by
	// the instant they fired.
	ListDue(ctx context.Context) ([]*domain.Reminder, error)

	// ListFireCandidates retrieves pending and snoozed reminders whose
	// next_fire_at falls within [from, until]. The bounds are the
	// activation window around the tick instant.
	ListFireCandidates(ctx context.Context, from, until time.Time) ([]*domain.Reminder, error)

	// ListAcknowledgedRecurring retrieves acknowledged reminders with a
	// non-empty recurrence, candidates for re-arming.
	ListAcknowledgedRecurring(ctx context.Context) ([]*domain.Reminder, error)

	// HasActiveMissedReminder reports whether the task already has a missed
	// reminder in pending, due, or snoozed status. The missed-task detector
	// uses this to stay idempotent.
	HasActiveMissedReminder(ctx context.Context, taskID uuid.UUID) (bool, error)

	// Update saves the state fields of an existing reminder. Configuration
	// fields are immutable and never written after creation.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Update(ctx context.Context, reminder *domain.Reminder) error

	// Delete removes a reminder configuration outright.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ReminderStore bound to the given transaction so that
	// a tick's transitions commit or roll back as a unit.
	WithTx(tx *sql.Tx) ReminderStore
}
