package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
	"github.com/phrazzld/remind-api/internal/testutils"
)

func newTestTaskService(t *testing.T) (*taskServiceImpl, *testutils.InMemoryTaskStore) {
	t.Helper()
	tasks := testutils.NewInMemoryTaskStore()
	svc := NewTaskService(nil, tasks, nil).(*taskServiceImpl)
	svc.runTx = func(ctx context.Context, db *sql.DB, fn store.TxFn) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc, tasks
}

func seedTask(t *testing.T, svc TaskService, title, date, timeOfDay string) *domain.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), title, "", date, timeOfDay)
	require.NoError(t, err)
	return task
}

func TestCreateAndGetTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)

	created := seedTask(t, svc, "Dentist", "2026-09-01", "14:00")

	got, err := svc.GetTask(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Dentist", got.Title)

	// Invalid input fails validation
	_, err = svc.CreateTask(context.Background(), "", "", "2026-09-01", "14:00")
	require.ErrorIs(t, err, domain.ErrValidation)

	// Unknown ID is not found
	_, err = svc.GetTask(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestListTasks(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)

	seedTask(t, svc, "Morning", "2026-09-01", "08:00")
	seedTask(t, svc, "Afternoon", "2026-09-01", "14:00")
	seedTask(t, svc, "Other day", "2026-09-02", "08:00")

	all, err := svc.ListTasks(context.Background(), "", 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)

	day, err := svc.ListTasks(context.Background(), "2026-09-01", 0, 100)
	require.NoError(t, err)
	require.Len(t, day, 2)
	require.Equal(t, "Morning", day[0].Title, "tasks ordered by scheduled time")

	_, err = svc.ListTasks(context.Background(), "bad-date", 0, 100)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestListWeekAndMonth(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)

	seedTask(t, svc, "In week", "2026-09-03", "09:00")
	seedTask(t, svc, "Week boundary", "2026-09-07", "09:00")
	seedTask(t, svc, "Past week", "2026-09-08", "09:00")
	seedTask(t, svc, "In October", "2026-10-05", "09:00")

	week, err := svc.ListWeek(context.Background(), "2026-09-01")
	require.NoError(t, err)
	require.Len(t, week, 2, "week spans 7 days inclusive")

	_, err = svc.ListWeek(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidDate)

	month, err := svc.ListMonth(context.Background(), 2026, 9)
	require.NoError(t, err)
	require.Len(t, month, 3)

	_, err = svc.ListMonth(context.Background(), 2026, 13)
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestUpdateTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)

	task := seedTask(t, svc, "Old title", "2026-09-01", "14:00")

	newTitle := "New title"
	completed := true
	updated, err := svc.UpdateTask(context.Background(), task.ID, TaskUpdate{
		Title:       &newTitle,
		IsCompleted: &completed,
	})
	require.NoError(t, err)
	require.Equal(t, "New title", updated.Title)
	require.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	require.Equal(t, "2026-09-01", updated.ScheduledDate, "untouched fields keep their values")

	// Clearing completion drops the timestamp
	uncompleted := false
	updated, err = svc.UpdateTask(context.Background(), task.ID, TaskUpdate{IsCompleted: &uncompleted})
	require.NoError(t, err)
	require.False(t, updated.IsCompleted)
	require.Nil(t, updated.CompletedAt)

	// Invalid updates are rejected before persisting
	badDate := "not-a-date"
	_, err = svc.UpdateTask(context.Background(), task.ID, TaskUpdate{ScheduledDate: &badDate})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompleteAndUncompleteTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)

	task := seedTask(t, svc, "Chore", "2026-09-01", "14:00")

	completed, err := svc.CompleteTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.True(t, completed.IsCompleted)

	uncompleted, err := svc.UncompleteTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.False(t, uncompleted.IsCompleted)

	_, err = svc.CompleteTask(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestDeleteTasks(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks := newTestTaskService(t)

	a := seedTask(t, svc, "A", "2026-09-01", "08:00")
	b := seedTask(t, svc, "B", "2026-09-01", "09:00")
	seedTask(t, svc, "C", "2026-09-02", "08:00")

	deleted, err := svc.DeleteTasks(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, deleted, 2, "unknown IDs are skipped, not errors")
	require.Equal(t, 1, tasks.Count())

	_, err = svc.DeleteTasks(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoTaskIDs)

	_, err = svc.DeleteTasks(context.Background(), []uuid.UUID{uuid.New()})
	require.ErrorIs(t, err, store.ErrTaskNotFound, "nothing deleted maps to not found")
}

func TestDeleteTasksByDateAndRanges(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks := newTestTaskService(t)

	seedTask(t, svc, "Mon", "2026-09-07", "08:00")
	seedTask(t, svc, "Tue", "2026-09-08", "08:00")
	seedTask(t, svc, "Next month", "2026-10-01", "08:00")

	deleted, err := svc.DeleteTasksByDate(context.Background(), "2026-09-07")
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	_, err = svc.DeleteTasksByDate(context.Background(), "bad")
	require.ErrorIs(t, err, ErrInvalidDate)

	deleted, err = svc.DeleteWeek(context.Background(), "2026-09-07")
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	deleted, err = svc.DeleteMonth(context.Background(), 2026, 10)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.Equal(t, 0, tasks.Count())
}

func TestDuplicateTasks(t *testing.T) {
	t.Parallel() // Enable parallel execution

	testCases := []struct {
		name       string
		sourceDate string // 2026-09-02 is a Wednesday
		targetType string
		wantDates  []string
	}{
		{
			name:       "weekdays excludes the source day",
			sourceDate: "2026-09-02",
			targetType: "weekdays",
			wantDates:  []string{"2026-08-31", "2026-09-01", "2026-09-03", "2026-09-04"},
		},
		{
			name:       "weekend from a weekday",
			sourceDate: "2026-09-02",
			targetType: "weekend",
			wantDates:  []string{"2026-09-05", "2026-09-06"},
		},
		{
			name:       "week covers the Monday-based calendar week",
			sourceDate: "2026-09-02",
			targetType: "week",
			wantDates: []string{
				"2026-08-31", "2026-09-01", "2026-09-03",
				"2026-09-04", "2026-09-05", "2026-09-06",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestTaskService(t)
			seedTask(t, svc, "Standup", tc.sourceDate, "09:00")

			created, err := svc.DuplicateTasks(context.Background(), tc.sourceDate, tc.targetType)
			require.NoError(t, err)
			require.Len(t, created, len(tc.wantDates))

			gotDates := make(map[string]bool)
			for _, task := range created {
				gotDates[task.ScheduledDate] = true
				require.Equal(t, "Standup", task.Title)
				require.Equal(t, "09:00", task.ScheduledTime)
				require.False(t, task.IsCompleted)
			}
			for _, date := range tc.wantDates {
				require.True(t, gotDates[date], "missing duplicate on %s", date)
			}
		})
	}
}

func TestDuplicateTasksMonth(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks := newTestTaskService(t)
	seedTask(t, svc, "Workout", "2026-09-02", "07:00")
	seedTask(t, svc, "Reading", "2026-09-02", "21:00")

	created, err := svc.DuplicateTasks(context.Background(), "2026-09-02", "month")
	require.NoError(t, err)
	require.Len(t, created, 60, "2 tasks over the next 30 days")
	require.Equal(t, 62, tasks.Count())
}

func TestDuplicateTasksErrors(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, _ := newTestTaskService(t)
	seedTask(t, svc, "Standup", "2026-09-02", "09:00")

	_, err := svc.DuplicateTasks(context.Background(), "bad", "week")
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.DuplicateTasks(context.Background(), "2026-09-03", "week")
	require.ErrorIs(t, err, ErrNoSourceTasks)

	_, err = svc.DuplicateTasks(context.Background(), "2026-09-02", "fortnight")
	require.ErrorIs(t, err, ErrInvalidTargetType)
}
