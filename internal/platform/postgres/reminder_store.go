package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// PostgresReminderStore implements the store.ReminderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReminderStore struct {
	db store.DBTX
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the
// ReminderStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresReminderStore(db store.DBTX) *PostgresReminderStore {
	return &PostgresReminderStore{db: db}
}

// Ensure PostgresReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

const reminderColumns = `id, task_id, reminder_type, before_minutes, recurrence, recurrence_days,
	status, next_fire_at, snooze_until, fire_count, fired_at, acknowledged_at, created_at`

// Create implements store.ReminderStore.Create
func (s *PostgresReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	if err := reminder.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO task_reminders (id, task_id, reminder_type, before_minutes, recurrence, recurrence_days,
			status, next_fire_at, snooze_until, fire_count, fired_at, acknowledged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.TaskID,
		reminder.Type,
		reminder.BeforeMinutes,
		reminder.Recurrence,
		reminder.RecurrenceDays,
		reminder.Status,
		reminder.NextFireAt,
		reminder.SnoozeUntil,
		reminder.FireCount,
		reminder.FiredAt,
		reminder.AcknowledgedAt,
		reminder.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reminder %s", store.ErrDuplicate, reminder.ID)
		}
		logger.FromContext(ctx).Error("failed to create reminder",
			"reminder_id", reminder.ID,
			"task_id", reminder.TaskID,
			"error", err)
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

// GetByID implements store.ReminderStore.GetByID
func (s *PostgresReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM task_reminders WHERE id = $1`

	reminder, err := scanReminder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrReminderNotFound
		}
		logger.FromContext(ctx).Error("failed to get reminder",
			"reminder_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

// ListByTask implements store.ReminderStore.ListByTask
func (s *PostgresReminderStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM task_reminders
		WHERE task_id = $1
		ORDER BY created_at DESC`

	return s.queryReminders(ctx, query, taskID)
}

// ListDue implements store.ReminderStore.ListDue
func (s *PostgresReminderStore) ListDue(ctx context.Context) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM task_reminders
		WHERE status = $1
		ORDER BY fired_at ASC`

	return s.queryReminders(ctx, query, domain.ReminderStatusDue)
}

// ListFireCandidates implements store.ReminderStore.ListFireCandidates
// The query is served by the (status, next_fire_at) index.
func (s *PostgresReminderStore) ListFireCandidates(ctx context.Context, from, until time.Time) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM task_reminders
		WHERE status IN ($1, $2) AND next_fire_at >= $3 AND next_fire_at <= $4
		ORDER BY next_fire_at ASC`

	return s.queryReminders(ctx, query,
		domain.ReminderStatusPending,
		domain.ReminderStatusSnoozed,
		from.UTC(),
		until.UTC(),
	)
}

// ListAcknowledgedRecurring implements store.ReminderStore.ListAcknowledgedRecurring
func (s *PostgresReminderStore) ListAcknowledgedRecurring(ctx context.Context) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM task_reminders
		WHERE status = $1 AND recurrence <> ''
		ORDER BY acknowledged_at ASC`

	return s.queryReminders(ctx, query, domain.ReminderStatusAcknowledged)
}

// HasActiveMissedReminder implements store.ReminderStore.HasActiveMissedReminder
func (s *PostgresReminderStore) HasActiveMissedReminder(ctx context.Context, taskID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM task_reminders
		WHERE task_id = $1 AND reminder_type = $2 AND status IN ($3, $4, $5)
	)`

	var exists bool
	err := s.db.QueryRowContext(ctx, query,
		taskID,
		domain.ReminderTypeMissed,
		domain.ReminderStatusPending,
		domain.ReminderStatusDue,
		domain.ReminderStatusSnoozed,
	).Scan(&exists)
	if err != nil {
		logger.FromContext(ctx).Error("failed to check for active missed reminder",
			"task_id", taskID,
			"error", err)
		return false, fmt.Errorf("failed to check for active missed reminder: %w", err)
	}

	return exists, nil
}

// Update implements store.ReminderStore.Update
// Only state fields are written; configuration columns stay as created.
func (s *PostgresReminderStore) Update(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		UPDATE task_reminders
		SET status = $1, next_fire_at = $2, snooze_until = $3, fire_count = $4,
		    fired_at = $5, acknowledged_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		reminder.Status,
		reminder.NextFireAt,
		reminder.SnoozeUntil,
		reminder.FireCount,
		reminder.FiredAt,
		reminder.AcknowledgedAt,
		reminder.ID,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update reminder",
			"reminder_id", reminder.ID,
			"error", err)
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// Delete implements store.ReminderStore.Delete
func (s *PostgresReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM task_reminders WHERE id = $1`, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete reminder",
			"reminder_id", id,
			"error", err)
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrReminderNotFound
	}

	return nil
}

// WithTx implements store.ReminderStore.WithTx
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{db: tx}
}

// queryReminders runs a query returning full reminder rows and scans them.
func (s *PostgresReminderStore) queryReminders(ctx context.Context, query string, args ...any) ([]*domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to query reminders", "error", err)
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder row: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}

	return reminders, nil
}

// scanReminder scans one reminder row into a domain.Reminder.
func scanReminder(row rowScanner) (*domain.Reminder, error) {
	var reminder domain.Reminder
	var recurrenceDays sql.NullString
	var nextFireAt, snoozeUntil, firedAt, acknowledgedAt sql.NullTime

	err := row.Scan(
		&reminder.ID,
		&reminder.TaskID,
		&reminder.Type,
		&reminder.BeforeMinutes,
		&reminder.Recurrence,
		&recurrenceDays,
		&reminder.Status,
		&nextFireAt,
		&snoozeUntil,
		&reminder.FireCount,
		&firedAt,
		&acknowledgedAt,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	reminder.RecurrenceDays = recurrenceDays.String
	reminder.NextFireAt = nullableUTC(nextFireAt)
	reminder.SnoozeUntil = nullableUTC(snoozeUntil)
	reminder.FiredAt = nullableUTC(firedAt)
	reminder.AcknowledgedAt = nullableUTC(acknowledgedAt)
	reminder.CreatedAt = reminder.CreatedAt.UTC()

	return &reminder, nil
}

// nullableUTC converts a nullable column value to a *time.Time in UTC.
func nullableUTC(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
