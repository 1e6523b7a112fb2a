package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the task fails domain validation.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMultiple saves multiple tasks to the store. Run it within a
	// transaction via WithTx and RunInTransaction so the batch is atomic;
	// bulk duplication depends on all-or-nothing behavior.
	CreateMultiple(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks ordered by scheduled time, optionally filtered to
	// a single scheduled date (empty string means no filter), with
	// skip/limit pagination.
	List(ctx context.Context, date string, skip, limit int) ([]*domain.Task, error)

	// ListDateRange retrieves tasks whose scheduled date falls within
	// [startDate, endDate] inclusive, ordered by date then time.
	ListDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Task, error)

	// ListOverdue retrieves incomplete tasks whose scheduled date falls
	// within [startDate, endDate] inclusive. The missed-task detector uses
	// this with a bounded trailing window.
	ListOverdue(ctx context.Context, startDate, endDate string) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID. Reminders referencing the task are
	// removed by the database's ON DELETE CASCADE constraint; a reminder
	// never outlives its task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBatch removes the tasks with the given IDs and returns the IDs
	// that were actually deleted.
	DeleteBatch(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// DeleteDateRange removes all tasks scheduled within
	// [startDate, endDate] inclusive and returns the deleted IDs.
	DeleteDateRange(ctx context.Context, startDate, endDate string) ([]uuid.UUID, error)

	// WithTx returns a TaskStore bound to the given transaction so that
	// multiple operations can participate in one atomic unit of work.
	WithTx(tx *sql.Tx) TaskStore
}
