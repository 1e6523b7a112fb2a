package schedule

import (
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
)

const (
	// MissedReminderHourLocal is the local hour at which missed-task
	// reminders fire.
	MissedReminderHourLocal = 9

	// ProbeDayLimit caps the day-by-day advancement for weekdays and custom
	// recurrences. If no acceptable day is found within this many probes the
	// reminder has no next occurrence.
	ProbeDayLimit = 14
)

// SnoozeOptionsMinutes is the closed set of allowed snooze durations.
var SnoozeOptionsMinutes = map[int]bool{5: true, 10: true, 30: true, 60: true}

// BeforeOptionsMinutes is the closed set of allowed before-offsets.
var BeforeOptionsMinutes = map[int]bool{0: true, 5: true, 10: true, 15: true, 30: true, 60: true}

// NextFireInput carries the full reminder configuration plus the evaluation
// instant into NextFireAt. Now must be in UTC.
type NextFireInput struct {
	Type            domain.ReminderType
	ScheduledDate   string // YYYY-MM-DD, task's local calendar day
	ScheduledTime   string // HH:MM, task's local time of day
	BeforeMinutes   int
	TZOffsetMinutes int
	Recurrence      domain.Recurrence
	RecurrenceDays  string
	LastFiredAt     *time.Time
	Now             time.Time
}

// TaskScheduledUTC converts a task's stored local date and time to a naive
// UTC instant using the caller-supplied offset in minutes (e.g. +330 for
// UTC+5:30).
func TaskScheduledUTC(scheduledDate, scheduledTime string, tzOffsetMinutes int) (time.Time, error) {
	local, err := time.Parse(domain.DateLayout+" "+domain.TimeLayout, scheduledDate+" "+scheduledTime)
	if err != nil {
		return time.Time{}, err
	}
	return local.Add(-time.Duration(tzOffsetMinutes) * time.Minute), nil
}

// NextFireAt computes the next UTC instant at which the reminder should fire.
// The second return value is false when the reminder has no future
// occurrence: a one-shot whose instant has passed, a malformed schedule, or
// a weekday/custom recurrence that found no acceptable day within
// ProbeDayLimit probes.
func NextFireAt(in NextFireInput) (time.Time, bool) {
	now := in.Now.UTC()

	if in.Type == domain.ReminderTypeMissed {
		return missedFireAt(now, in.TZOffsetMinutes), true
	}

	base, err := TaskScheduledUTC(in.ScheduledDate, in.ScheduledTime, in.TZOffsetMinutes)
	if err != nil {
		return time.Time{}, false
	}
	fire := base.Add(-time.Duration(in.BeforeMinutes) * time.Minute)

	if in.Recurrence == domain.RecurrenceNone {
		// One-shot: only valid if strictly in the future. An expired
		// one-shot is inert and never reactivated.
		if fire.After(now) {
			return fire, true
		}
		return time.Time{}, false
	}

	// First fire of a recurring reminder whose initial slot is still ahead.
	if in.LastFiredAt == nil && fire.After(now) {
		return fire, true
	}

	cursor := fire
	if in.LastFiredAt != nil {
		cursor = in.LastFiredAt.UTC()
	}

	switch in.Recurrence {
	case domain.RecurrenceDaily:
		return advanceByStep(cursor, now, 24*time.Hour), true

	case domain.RecurrenceWeekly:
		return advanceByStep(cursor, now, 7*24*time.Hour), true

	case domain.RecurrenceWeekdays:
		return probeDays(cursor, now, func(day int) bool { return day < 5 })

	case domain.RecurrenceCustom:
		allowed, err := domain.ParseRecurrenceDays(in.RecurrenceDays)
		if err != nil {
			return time.Time{}, false
		}
		return probeDays(cursor, now, func(day int) bool { return allowed[day] })
	}

	return time.Time{}, false
}

// MissedFireAtUTC returns 09:00 UTC on the calendar day after now. The
// per-tick missed recompute path intentionally ignores the caller offset;
// the offset-aware variant is used only at creation time.
func MissedFireAtUTC(now time.Time) time.Time {
	now = now.UTC()
	today9 := time.Date(now.Year(), now.Month(), now.Day(), MissedReminderHourLocal, 0, 0, 0, time.UTC)
	return today9.AddDate(0, 0, 1)
}

// missedFireAt computes 09:00 local time tomorrow relative to now, converted
// to UTC via the offset. If local time is not yet past 09:00 today, the
// reminder fires today instead.
func missedFireAt(now time.Time, tzOffsetMinutes int) time.Time {
	offset := time.Duration(tzOffsetMinutes) * time.Minute
	local := now.Add(offset)
	today9Local := time.Date(local.Year(), local.Month(), local.Day(), MissedReminderHourLocal, 0, 0, 0, time.UTC)
	today9UTC := today9Local.Add(-offset)
	if !now.Before(today9UTC) {
		today9UTC = today9UTC.AddDate(0, 0, 1)
	}
	return today9UTC
}

// advanceByStep moves the cursor forward by fixed steps until it is strictly
// after now.
func advanceByStep(cursor, now time.Time, step time.Duration) time.Time {
	for !cursor.After(now) {
		cursor = cursor.Add(step)
	}
	return cursor
}

// probeDays advances the cursor one day at a time, accepting only instants
// whose weekday index (0=Mon ... 6=Sun) satisfies accept and which are
// strictly after now. Bounded to ProbeDayLimit probes.
func probeDays(cursor, now time.Time, accept func(day int) bool) (time.Time, bool) {
	cursor = cursor.AddDate(0, 0, 1)
	for i := 0; i < ProbeDayLimit; i++ {
		if accept(weekdayIndex(cursor)) && cursor.After(now) {
			return cursor, true
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// weekdayIndex maps time.Weekday (Sunday=0) to the Monday-based indexing
// used by recurrence days (0=Mon ... 6=Sun).
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
