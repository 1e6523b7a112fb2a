package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = "id, title, description, scheduled_date, scheduled_time, is_completed, completed_at, created_at"

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, title, description, scheduled_date, scheduled_time, is_completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.ScheduledDate,
		task.ScheduledTime,
		task.IsCompleted,
		task.CompletedAt,
		task.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
		}
		logger.FromContext(ctx).Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// CreateMultiple implements store.TaskStore.CreateMultiple
func (s *PostgresTaskStore) CreateMultiple(ctx context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		if err := s.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContext(ctx).Error("failed to get task",
			"task_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, date string, skip, limit int) ([]*domain.Task, error) {
	var query string
	var args []any

	if date != "" {
		query = `SELECT ` + taskColumns + ` FROM tasks
			WHERE scheduled_date = $1
			ORDER BY scheduled_time ASC
			OFFSET $2 LIMIT $3`
		args = []any{date, skip, limit}
	} else {
		query = `SELECT ` + taskColumns + ` FROM tasks
			ORDER BY scheduled_date ASC, scheduled_time ASC
			OFFSET $1 LIMIT $2`
		args = []any{skip, limit}
	}

	return s.queryTasks(ctx, query, args...)
}

// ListDateRange implements store.TaskStore.ListDateRange
func (s *PostgresTaskStore) ListDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE scheduled_date >= $1 AND scheduled_date <= $2
		ORDER BY scheduled_date ASC, scheduled_time ASC`

	return s.queryTasks(ctx, query, startDate, endDate)
}

// ListOverdue implements store.TaskStore.ListOverdue
func (s *PostgresTaskStore) ListOverdue(ctx context.Context, startDate, endDate string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE is_completed = FALSE AND scheduled_date >= $1 AND scheduled_date <= $2
		ORDER BY scheduled_date ASC, scheduled_time ASC`

	return s.queryTasks(ctx, query, startDate, endDate)
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, scheduled_date = $3, scheduled_time = $4,
		    is_completed = $5, completed_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.ScheduledDate,
		task.ScheduledTime,
		task.IsCompleted,
		task.CompletedAt,
		task.ID,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to update task",
			"task_id", task.ID,
			"error", err)
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// Reminder rows referencing the task are removed by ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete task",
			"task_id", id,
			"error", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// DeleteBatch implements store.TaskStore.DeleteBatch
func (s *PostgresTaskStore) DeleteBatch(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	// Pass IDs as a text array; the stdlib pgx driver encodes []string
	// natively and the cast restores uuid typing server-side.
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `DELETE FROM tasks WHERE id = ANY($1::uuid[]) RETURNING id`

	rows, err := s.db.QueryContext(ctx, query, idStrings)
	if err != nil {
		logger.FromContext(ctx).Error("failed to batch delete tasks", "error", err)
		return nil, fmt.Errorf("failed to batch delete tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectIDs(rows)
}

// DeleteDateRange implements store.TaskStore.DeleteDateRange
func (s *PostgresTaskStore) DeleteDateRange(ctx context.Context, startDate, endDate string) ([]uuid.UUID, error) {
	query := `DELETE FROM tasks WHERE scheduled_date >= $1 AND scheduled_date <= $2 RETURNING id`

	rows, err := s.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete tasks by date range",
			"start_date", startDate,
			"end_date", endDate,
			"error", err)
		return nil, fmt.Errorf("failed to delete tasks by date range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectIDs(rows)
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// queryTasks runs a query returning full task rows and scans them.
func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Error("failed to query tasks", "error", err)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row into a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.ScheduledDate,
		&task.ScheduledTime,
		&task.IsCompleted,
		&completedAt,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		task.CompletedAt = &t
	}
	task.CreatedAt = task.CreatedAt.UTC()

	return &task, nil
}

// collectIDs drains an id-returning result set.
func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating id rows: %w", err)
	}
	return ids, nil
}
