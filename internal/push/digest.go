package push

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

// Notification kinds recorded in the push log. The log key is
// (sent_date, kind, task_id), so each kind fires at most once per local
// calendar day, per task for the per-task kind.
const (
	KindMorningDigest = "morning_digest"
	KindPreTask       = "pre_task"
	KindDailyReport   = "daily_report"
)

const (
	// morningDigestHour is the local hour after which the morning schedule
	// digest becomes eligible.
	morningDigestHour = 9

	// dailyReportHour and dailyReportMinute mark the local instant after
	// which the end-of-day report becomes eligible.
	dailyReportHour   = 23
	dailyReportMinute = 59

	// preTaskWindowMin and preTaskWindowMax bound how far ahead of its
	// scheduled time a task triggers an alert. The window is wider than the
	// evaluation cadence so no task slips between two cycles.
	preTaskWindowMin = 9 * time.Minute
	preTaskWindowMax = 11 * time.Minute
)

// Clock abstracts the current time so digest cycles can be driven from a
// fixed instant in tests.
type Clock interface {
	Now() time.Time
}

// Digest evaluates, once per cycle, which notifications are owed for the
// current local day and sends each at most once. Dedup lives in the push
// log table, so a restart mid-day never re-sends.
type Digest struct {
	tasks           store.TaskStore
	pushLog         store.PushLogStore
	client          *Client
	tzOffsetMinutes int
	clock           Clock
	logger          *slog.Logger
}

// NewDigest creates a Digest. tzOffsetMinutes shifts UTC to the user's local
// wall clock; all three notification slots are local-time anchored.
func NewDigest(
	tasks store.TaskStore,
	pushLog store.PushLogStore,
	client *Client,
	tzOffsetMinutes int,
	clock Clock,
	log *slog.Logger,
) *Digest {
	if log == nil {
		log = slog.Default()
	}
	return &Digest{
		tasks:           tasks,
		pushLog:         pushLog,
		client:          client,
		tzOffsetMinutes: tzOffsetMinutes,
		clock:           clock,
		logger:          log.With(slog.String("component", "push_digest")),
	}
}

// Run evaluates digest cycles on the given cadence until the context is
// canceled. A failed cycle is logged and the next cycle retries whatever
// remains unsent.
func (d *Digest) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("push digest started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("push digest stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := d.Cycle(ctx); err != nil {
				d.logger.Error("digest cycle failed",
					slog.String("error", err.Error()))
			}
		}
	}
}

// Cycle runs one evaluation pass: morning digest, pre-task alerts, and the
// end-of-day report, each guarded by the push log.
func (d *Digest) Cycle(ctx context.Context) error {
	now := d.clock.Now().UTC()
	local := now.Add(time.Duration(d.tzOffsetMinutes) * time.Minute)
	localDate := local.Format(domain.DateLayout)

	if err := d.morningDigest(ctx, local, localDate); err != nil {
		return fmt.Errorf("morning digest: %w", err)
	}
	if err := d.preTaskAlerts(ctx, local, localDate); err != nil {
		return fmt.Errorf("pre-task alerts: %w", err)
	}
	if err := d.dailyReport(ctx, local, localDate); err != nil {
		return fmt.Errorf("daily report: %w", err)
	}
	return nil
}

// morningDigest sends the day's schedule once local time passes 09:00.
func (d *Digest) morningDigest(ctx context.Context, local time.Time, localDate string) error {
	if local.Hour() < morningDigestHour {
		return nil
	}

	sent, err := d.pushLog.WasSent(ctx, localDate, KindMorningDigest, nil)
	if err != nil || sent {
		return err
	}

	tasks, err := d.tasks.List(ctx, localDate, 0, 100)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		// An empty day still marks the digest sent so the query does not
		// repeat every cycle until midnight.
		return d.pushLog.MarkSent(ctx, localDate, KindMorningDigest, nil)
	}

	var lines []string
	for _, task := range tasks {
		lines = append(lines, fmt.Sprintf("%s %s", task.ScheduledTime, task.Title))
	}
	title := fmt.Sprintf("Today's schedule (%d)", len(tasks))

	if err := d.client.Send(ctx, title, strings.Join(lines, "\n"), KindMorningDigest); err != nil {
		// Delivery failures are not recorded; the next cycle retries.
		return nil
	}
	return d.pushLog.MarkSent(ctx, localDate, KindMorningDigest, nil)
}

// preTaskAlerts sends one alert per task whose scheduled time falls 9 to 11
// minutes ahead of the current local time.
func (d *Digest) preTaskAlerts(ctx context.Context, local time.Time, localDate string) error {
	tasks, err := d.tasks.List(ctx, localDate, 0, 100)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}

		scheduled, err := time.Parse(
			domain.DateLayout+" "+domain.TimeLayout,
			task.ScheduledDate+" "+task.ScheduledTime,
		)
		if err != nil {
			continue
		}

		lead := scheduled.Sub(local)
		if lead < preTaskWindowMin || lead > preTaskWindowMax {
			continue
		}

		taskID := task.ID
		sent, err := d.pushLog.WasSent(ctx, localDate, KindPreTask, &taskID)
		if err != nil {
			return err
		}
		if sent {
			continue
		}

		message := fmt.Sprintf("%s at %s", task.Title, task.ScheduledTime)
		if err := d.client.Send(ctx, "Coming up in 10 minutes", message, preTaskCollapseID(taskID)); err != nil {
			continue
		}
		if err := d.pushLog.MarkSent(ctx, localDate, KindPreTask, &taskID); err != nil {
			return err
		}
	}
	return nil
}

// dailyReport sends a completion summary once local time passes 23:59.
func (d *Digest) dailyReport(ctx context.Context, local time.Time, localDate string) error {
	if local.Hour() < dailyReportHour ||
		(local.Hour() == dailyReportHour && local.Minute() < dailyReportMinute) {
		return nil
	}

	sent, err := d.pushLog.WasSent(ctx, localDate, KindDailyReport, nil)
	if err != nil || sent {
		return err
	}

	tasks, err := d.tasks.List(ctx, localDate, 0, 100)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return d.pushLog.MarkSent(ctx, localDate, KindDailyReport, nil)
	}

	completed := 0
	for _, task := range tasks {
		if task.IsCompleted {
			completed++
		}
	}

	message := fmt.Sprintf("Completed %d of %d tasks today", completed, len(tasks))
	if err := d.client.Send(ctx, "Daily report", message, KindDailyReport); err != nil {
		return nil
	}
	return d.pushLog.MarkSent(ctx, localDate, KindDailyReport, nil)
}

func preTaskCollapseID(taskID uuid.UUID) string {
	return KindPreTask + "_" + taskID.String()
}
