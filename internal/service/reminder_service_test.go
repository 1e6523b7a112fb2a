package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
	"github.com/phrazzld/remind-api/internal/testutils"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestReminderService(
	t *testing.T,
) (*reminderServiceImpl, *testutils.InMemoryTaskStore, *testutils.InMemoryReminderStore) {
	t.Helper()
	tasks := testutils.NewInMemoryTaskStore()
	reminders := testutils.NewInMemoryReminderStore()
	svc := NewReminderService(tasks, reminders, nil).(*reminderServiceImpl)
	svc.now = func() time.Time { return testNow }
	return svc, tasks, reminders
}

func seedReminderTask(t *testing.T, tasks *testutils.InMemoryTaskStore, date, timeOfDay string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("Test task", "", date, timeOfDay)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestCreateReminderExact(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "14:00")

	reminder, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID,
		Type:   domain.ReminderTypeExact,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ReminderStatusPending, reminder.Status)
	require.NotNil(t, reminder.NextFireAt)
	require.Equal(t, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), *reminder.NextFireAt)
}

func TestCreateReminderBeforeWithOffset(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "20:00")

	reminder, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID:          task.ID,
		Type:            domain.ReminderTypeBefore,
		BeforeMinutes:   15,
		TZOffsetMinutes: 330, // 20:00 at UTC+5:30 is 14:30 UTC
	})
	require.NoError(t, err)
	require.NotNil(t, reminder.NextFireAt)
	require.Equal(t, time.Date(2026, 9, 1, 14, 15, 0, 0, time.UTC), *reminder.NextFireAt)
}

func TestCreateReminderMissed(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-08-30", "14:00")

	reminder, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID,
		Type:   domain.ReminderTypeMissed,
	})
	require.NoError(t, err)
	require.NotNil(t, reminder.NextFireAt)
	// Missed reminders use the fixed 09:00 UTC next-day slot
	require.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), *reminder.NextFireAt)
}

func TestCreateReminderRejections(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "14:00")

	completedTask := seedReminderTask(t, tasks, "2026-09-01", "15:00")
	completedTask.Complete(testNow)
	require.NoError(t, tasks.Update(context.Background(), completedTask))

	pastTask := seedReminderTask(t, tasks, "2026-09-01", "10:00")

	testCases := []struct {
		name    string
		input   CreateReminderInput
		wantErr error
	}{
		{
			name:    "unknown task",
			input:   CreateReminderInput{TaskID: uuid.New(), Type: domain.ReminderTypeExact},
			wantErr: store.ErrTaskNotFound,
		},
		{
			name:    "completed task",
			input:   CreateReminderInput{TaskID: completedTask.ID, Type: domain.ReminderTypeExact},
			wantErr: ErrTaskCompleted,
		},
		{
			name:    "invalid type",
			input:   CreateReminderInput{TaskID: task.ID, Type: domain.ReminderType("sometime")},
			wantErr: domain.ErrReminderTypeInvalid,
		},
		{
			name:    "invalid recurrence",
			input:   CreateReminderInput{TaskID: task.ID, Type: domain.ReminderTypeExact, Recurrence: domain.Recurrence("hourly")},
			wantErr: domain.ErrRecurrenceInvalid,
		},
		{
			name: "custom recurrence without days",
			input: CreateReminderInput{
				TaskID: task.ID, Type: domain.ReminderTypeExact,
				Recurrence: domain.RecurrenceCustom,
			},
			wantErr: domain.ErrRecurrenceDaysInvalid,
		},
		{
			name: "before offset outside option set",
			input: CreateReminderInput{
				TaskID: task.ID, Type: domain.ReminderTypeBefore, BeforeMinutes: 7,
			},
			wantErr: ErrInvalidBeforeMinutes,
		},
		{
			name: "timezone offset out of range",
			input: CreateReminderInput{
				TaskID: task.ID, Type: domain.ReminderTypeExact, TZOffsetMinutes: 900,
			},
			wantErr: ErrInvalidTZOffset,
		},
		{
			name:    "one-shot in the past",
			input:   CreateReminderInput{TaskID: pastTask.ID, Type: domain.ReminderTypeExact},
			wantErr: ErrPastFireTime,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateReminder(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateReminderRecurringWithPastSlot(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	// The slot passed two hours ago, but a daily recurrence rolls forward
	// instead of being rejected.
	task := seedReminderTask(t, tasks, "2026-09-01", "10:00")

	reminder, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID:     task.ID,
		Type:       domain.ReminderTypeExact,
		Recurrence: domain.RecurrenceDaily,
	})
	require.NoError(t, err)
	require.NotNil(t, reminder.NextFireAt)
	require.Equal(t, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC), *reminder.NextFireAt)
}

func TestListTaskReminders(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "14:00")

	_, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID, Type: domain.ReminderTypeExact,
	})
	require.NoError(t, err)
	_, err = svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID, Type: domain.ReminderTypeBefore, BeforeMinutes: 30,
	})
	require.NoError(t, err)

	listed, err := svc.ListTaskReminders(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	_, err = svc.ListTaskReminders(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestDueRemindersAndTransitions(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, reminders := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "14:00")

	created, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID, Type: domain.ReminderTypeExact,
	})
	require.NoError(t, err)

	// Nothing due yet
	due, serverUTC, err := svc.DueReminders(context.Background())
	require.NoError(t, err)
	require.Empty(t, due)
	require.Equal(t, testNow, serverUTC)

	// Fire it the way the scheduler would
	stored, err := reminders.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NoError(t, stored.Fire(testNow))
	require.NoError(t, reminders.Update(context.Background(), stored))

	due, _, err = svc.DueReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, due, 1)

	// Snooze outside the option set is rejected
	_, err = svc.SnoozeReminder(context.Background(), created.ID, 7)
	require.ErrorIs(t, err, ErrInvalidSnoozeDuration)

	// Snooze then acknowledge conflicts: snoozed is not due
	snoozed, err := svc.SnoozeReminder(context.Background(), created.ID, 10)
	require.NoError(t, err)
	require.Equal(t, domain.ReminderStatusSnoozed, snoozed.Status)

	_, err = svc.AcknowledgeReminder(context.Background(), created.ID)
	require.True(t, domain.IsStateConflict(err), "expected state conflict, got %v", err)

	// Re-fire and acknowledge
	stored, err = reminders.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NoError(t, stored.Fire(testNow.Add(10*time.Minute)))
	require.NoError(t, reminders.Update(context.Background(), stored))

	acked, err := svc.AcknowledgeReminder(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReminderStatusAcknowledged, acked.Status)
}

func TestDeleteReminder(t *testing.T) {
	t.Parallel() // Enable parallel execution
	svc, tasks, _ := newTestReminderService(t)
	task := seedReminderTask(t, tasks, "2026-09-01", "14:00")

	created, err := svc.CreateReminder(context.Background(), CreateReminderInput{
		TaskID: task.ID, Type: domain.ReminderTypeExact,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReminder(context.Background(), created.ID))
	require.ErrorIs(t, svc.DeleteReminder(context.Background(), created.ID), store.ErrReminderNotFound)
}
