package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

// TaskUpdate carries a partial update to a task; nil fields are left as-is.
type TaskUpdate struct {
	Title         *string
	Description   *string
	ScheduledDate *string
	ScheduledTime *string
	IsCompleted   *bool
}

// TaskService provides task CRUD, range queries, and bulk duplication.
// None of these operations touch reminder state; the scheduler owns that.
type TaskService interface {
	// CreateTask creates a new task on the schedule.
	CreateTask(ctx context.Context, title, description, scheduledDate, scheduledTime string) (*domain.Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks lists tasks, optionally filtered to one scheduled date.
	ListTasks(ctx context.Context, date string, skip, limit int) ([]*domain.Task, error)

	// ListWeek lists tasks for the 7 days starting at startDate.
	ListWeek(ctx context.Context, startDate string) ([]*domain.Task, error)

	// ListMonth lists tasks for the given calendar month.
	ListMonth(ctx context.Context, year, month int) ([]*domain.Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// CompleteTask marks a task completed.
	CompleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UncompleteTask clears a task's completion state.
	UncompleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// DeleteTask removes a task and, via cascade, its reminders.
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// DeleteTasks removes multiple tasks by ID and returns the deleted IDs.
	DeleteTasks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// DeleteTasksByDate removes all tasks for one scheduled date.
	DeleteTasksByDate(ctx context.Context, date string) ([]uuid.UUID, error)

	// DeleteWeek removes all tasks for the 7 days starting at startDate.
	DeleteWeek(ctx context.Context, startDate string) ([]uuid.UUID, error)

	// DeleteMonth removes all tasks for the given calendar month.
	DeleteMonth(ctx context.Context, year, month int) ([]uuid.UUID, error)

	// DuplicateTasks copies every task on sourceDate to the dates selected
	// by targetType: the source week's weekdays, its weekend, the whole
	// week (source date always excluded), or the next 30 days. The batch
	// insert is atomic.
	DuplicateTasks(ctx context.Context, sourceDate, targetType string) ([]*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	db     *sql.DB
	tasks  store.TaskStore
	logger *slog.Logger
	now    func() time.Time

	// runTx defaults to store.RunInTransaction; tests substitute a runner
	// that skips the real database.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTaskService creates a new TaskService backed by the given store.
func NewTaskService(db *sql.DB, tasks store.TaskStore, log *slog.Logger) TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &taskServiceImpl{
		db:     db,
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_service")),
		now:    func() time.Time { return time.Now().UTC() },
		runTx:  store.RunInTransaction,
	}
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	title, description, scheduledDate, scheduledTime string,
) (*domain.Task, error) {
	task, err := domain.NewTask(title, description, scheduledDate, scheduledTime)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, date string, skip, limit int) ([]*domain.Task, error) {
	if date != "" {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.tasks.List(ctx, date, skip, limit)
}

// ListWeek implements TaskService.ListWeek
func (s *taskServiceImpl) ListWeek(ctx context.Context, startDate string) ([]*domain.Task, error) {
	start, end, err := weekRange(startDate)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListDateRange(ctx, start, end)
}

// ListMonth implements TaskService.ListMonth
func (s *taskServiceImpl) ListMonth(ctx context.Context, year, month int) ([]*domain.Task, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListDateRange(ctx, start, end)
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.ScheduledDate != nil {
		task.ScheduledDate = *update.ScheduledDate
	}
	if update.ScheduledTime != nil {
		task.ScheduledTime = *update.ScheduledTime
	}
	if update.IsCompleted != nil {
		if *update.IsCompleted {
			task.Complete(s.now())
		} else {
			task.Uncomplete()
		}
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// CompleteTask implements TaskService.CompleteTask
func (s *taskServiceImpl) CompleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Complete(s.now())

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// UncompleteTask implements TaskService.UncompleteTask
func (s *taskServiceImpl) UncompleteTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Uncomplete()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.tasks.Delete(ctx, id)
}

// DeleteTasks implements TaskService.DeleteTasks
func (s *taskServiceImpl) DeleteTasks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, ErrNoTaskIDs
	}
	deleted, err := s.tasks.DeleteBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, store.ErrTaskNotFound
	}
	return deleted, nil
}

// DeleteTasksByDate implements TaskService.DeleteTasksByDate
func (s *taskServiceImpl) DeleteTasksByDate(ctx context.Context, date string) ([]uuid.UUID, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.tasks.DeleteDateRange(ctx, date, date)
}

// DeleteWeek implements TaskService.DeleteWeek
func (s *taskServiceImpl) DeleteWeek(ctx context.Context, startDate string) ([]uuid.UUID, error) {
	start, end, err := weekRange(startDate)
	if err != nil {
		return nil, err
	}
	return s.tasks.DeleteDateRange(ctx, start, end)
}

// DeleteMonth implements TaskService.DeleteMonth
func (s *taskServiceImpl) DeleteMonth(ctx context.Context, year, month int) ([]uuid.UUID, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}
	return s.tasks.DeleteDateRange(ctx, start, end)
}

// DuplicateTasks implements TaskService.DuplicateTasks
func (s *taskServiceImpl) DuplicateTasks(
	ctx context.Context,
	sourceDate, targetType string,
) ([]*domain.Task, error) {
	source, err := time.Parse(domain.DateLayout, sourceDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	sourceTasks, err := s.tasks.List(ctx, sourceDate, 0, 1000)
	if err != nil {
		return nil, err
	}
	if len(sourceTasks) == 0 {
		return nil, ErrNoSourceTasks
	}

	targetDates, err := duplicateTargetDates(source, targetType)
	if err != nil {
		return nil, err
	}
	if len(targetDates) == 0 {
		return nil, ErrNoTargetDates
	}

	var created []*domain.Task
	for _, targetDate := range targetDates {
		for _, src := range sourceTasks {
			dup, err := domain.NewTask(src.Title, src.Description, targetDate, src.ScheduledTime)
			if err != nil {
				return nil, err
			}
			created = append(created, dup)
		}
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).CreateMultiple(ctx, created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate tasks: %w", err)
	}

	s.logger.Info("duplicated tasks",
		slog.String("source_date", sourceDate),
		slog.String("target_type", targetType),
		slog.Int("created", len(created)))

	return created, nil
}

// weekRange returns the inclusive [start, start+6d] date range.
func weekRange(startDate string) (string, string, error) {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return "", "", ErrInvalidDate
	}
	end := start.AddDate(0, 0, 6)
	return startDate, end.Format(domain.DateLayout), nil
}

// monthRange returns the inclusive first..last date range of a calendar month.
func monthRange(year, month int) (string, string, error) {
	if month < 1 || month > 12 {
		return "", "", ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(domain.DateLayout), last.Format(domain.DateLayout), nil
}

// duplicateTargetDates resolves a duplication target to concrete dates. The
// weekdays/weekend/week targets cover the source date's calendar week
// (weeks start Monday); month covers the next 30 days. The source date is
// never a target.
func duplicateTargetDates(source time.Time, targetType string) ([]string, error) {
	monday := source.AddDate(0, 0, -mondayIndex(source))

	var offsets []int
	switch targetType {
	case "weekdays":
		offsets = []int{0, 1, 2, 3, 4}
	case "weekend":
		offsets = []int{5, 6}
	case "week":
		offsets = []int{0, 1, 2, 3, 4, 5, 6}
	case "month":
		var dates []string
		for i := 1; i <= 30; i++ {
			dates = append(dates, source.AddDate(0, 0, i).Format(domain.DateLayout))
		}
		return dates, nil
	default:
		return nil, ErrInvalidTargetType
	}

	var dates []string
	for _, offset := range offsets {
		d := monday.AddDate(0, 0, offset)
		if d.Equal(source) {
			continue
		}
		dates = append(dates, d.Format(domain.DateLayout))
	}
	return dates, nil
}

// mondayIndex returns how many days source is past the Monday of its week.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
