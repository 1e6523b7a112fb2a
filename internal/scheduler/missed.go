package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/domain/schedule"
	"github.com/phrazzld/remind-api/internal/store"
)

// missedScanDays bounds the backward scan for overdue tasks. Tasks overdue
// longer than this are not re-flagged, keeping the scan cost fixed.
const missedScanDays = 7

// flagMissedTasks finds incomplete tasks whose scheduled date has passed
// within the trailing scan window and creates a missed reminder for each
// one that lacks an active missed reminder already. The existing-reminder
// check makes re-running a no-op.
func (s *Scheduler) flagMissedTasks(
	ctx context.Context,
	tasks store.TaskStore,
	reminders store.ReminderStore,
	now time.Time,
) error {
	today := now.UTC().Truncate(24 * time.Hour)
	startDate := today.AddDate(0, 0, -missedScanDays).Format(domain.DateLayout)
	endDate := today.AddDate(0, 0, -1).Format(domain.DateLayout)

	overdue, err := tasks.ListOverdue(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	for _, task := range overdue {
		exists, err := reminders.HasActiveMissedReminder(ctx, task.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		// The per-tick path schedules at fixed 09:00 UTC tomorrow; the
		// caller-offset-aware computation applies only at creation time.
		reminder, err := domain.NewReminder(
			task.ID,
			domain.ReminderTypeMissed,
			0,
			domain.RecurrenceNone,
			"",
			schedule.MissedFireAtUTC(now),
		)
		if err != nil {
			return err
		}

		if err := reminders.Create(ctx, reminder); err != nil {
			return err
		}

		s.logger.Info("missed reminder created",
			slog.String("task_id", task.ID.String()),
			slog.String("reminder_id", reminder.ID.String()),
			slog.Time("next_fire_at", *reminder.NextFireAt))
	}

	return nil
}
