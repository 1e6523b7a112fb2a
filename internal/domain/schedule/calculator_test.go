package schedule

import (
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestTaskScheduledUTC(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		name            string
		date            string
		timeOfDay       string
		tzOffsetMinutes int
		want            time.Time
	}{
		{
			name:      "UTC offset zero",
			date:      "2026-09-01",
			timeOfDay: "14:00",
			want:      time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
		},
		{
			name:            "positive offset shifts earlier in UTC",
			date:            "2026-09-01",
			timeOfDay:       "14:00",
			tzOffsetMinutes: 330, // UTC+5:30
			want:            time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:            "negative offset shifts later in UTC",
			date:            "2026-09-01",
			timeOfDay:       "14:00",
			tzOffsetMinutes: -300, // UTC-5
			want:            time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name:            "offset crossing midnight",
			date:            "2026-09-01",
			timeOfDay:       "01:00",
			tzOffsetMinutes: 330,
			want:            time.Date(2026, 8, 31, 19, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := TaskScheduledUTC(tc.date, tc.timeOfDay, tc.tzOffsetMinutes)
			require.NoError(t, err)
			if !got.Equal(tc.want) {
				t.Errorf("TaskScheduledUTC() = %v, want %v", got, tc.want)
			}
		})
	}

	_, err := TaskScheduledUTC("bad-date", "14:00", 0)
	require.Error(t, err)
}

func TestNextFireAtOneShot(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// Future one-shot fires at its instant
	fire, ok := NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), fire)

	// Before-offset subtracts from the base instant
	fire, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeBefore,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		BeforeMinutes: 15,
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 13, 45, 0, 0, time.UTC), fire)

	// Past one-shot has no occurrence
	_, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "11:00",
		Now:           now,
	})
	require.False(t, ok)

	// Exactly now is not strictly future
	_, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "12:00",
		Now:           now,
	})
	require.False(t, ok)

	// Malformed schedule has no occurrence
	_, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "not-a-date",
		ScheduledTime: "12:00",
		Now:           now,
	})
	require.False(t, ok)
}

func TestNextFireAtDaily(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	lastFired := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	fire, ok := NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		Recurrence:    domain.RecurrenceDaily,
		LastFiredAt:   &lastFired,
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC), fire)

	// First fire of a recurring reminder whose slot is still ahead
	fire, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "17:00",
		Recurrence:    domain.RecurrenceDaily,
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC), fire)

	// Slot already past with no fire history: cursor advances from the slot
	fire, ok = NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		Recurrence:    domain.RecurrenceDaily,
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC), fire)
}

func TestNextFireAtWeekly(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC)
	lastFired := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	fire, ok := NextFireAt(NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		Recurrence:    domain.RecurrenceWeekly,
		LastFiredAt:   &lastFired,
		Now:           now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 8, 14, 0, 0, 0, time.UTC), fire)
}

func TestNextFireAtWeekdaysNeverWeekend(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Walk two weeks of cursor positions; every computed instant must land
	// Monday through Friday.
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // a Monday
	for i := 0; i < 14; i++ {
		lastFired := start.AddDate(0, 0, i)
		now := lastFired.Add(time.Hour)

		fire, ok := NextFireAt(NextFireInput{
			Type:          domain.ReminderTypeExact,
			ScheduledDate: "2026-08-31",
			ScheduledTime: "09:00",
			Recurrence:    domain.RecurrenceWeekdays,
			LastFiredAt:   &lastFired,
			Now:           now,
		})
		require.True(t, ok, "no occurrence from cursor %v", lastFired)

		switch fire.Weekday() {
		case time.Saturday, time.Sunday:
			t.Errorf("weekdays recurrence produced %v (%s)", fire, fire.Weekday())
		}
		if !fire.After(now) {
			t.Errorf("fire %v not strictly after now %v", fire, now)
		}
	}
}

func TestNextFireAtWeekdaysFridayToMonday(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Friday 2026-09-04, before-15 reminder at UTC+5:30, acknowledged after
	// its Friday fire: the next occurrence is Monday, same local slot.
	lastFired := time.Date(2026, 9, 4, 8, 15, 0, 0, time.UTC) // 13:45 local
	now := lastFired.Add(30 * time.Minute)

	fire, ok := NextFireAt(NextFireInput{
		Type:            domain.ReminderTypeBefore,
		ScheduledDate:   "2026-09-04",
		ScheduledTime:   "14:00",
		BeforeMinutes:   15,
		TZOffsetMinutes: 330,
		Recurrence:      domain.RecurrenceWeekdays,
		LastFiredAt:     &lastFired,
		Now:             now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 7, 8, 15, 0, 0, time.UTC), fire)
	require.Equal(t, time.Monday, fire.Weekday())
}

func TestNextFireAtCustomDays(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// "0,2,4" is Monday, Wednesday, Friday. From a Monday fire the next
	// occurrence is Wednesday.
	lastFired := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // Monday
	now := lastFired.Add(time.Hour)

	fire, ok := NextFireAt(NextFireInput{
		Type:           domain.ReminderTypeExact,
		ScheduledDate:  "2026-08-31",
		ScheduledTime:  "09:00",
		Recurrence:     domain.RecurrenceCustom,
		RecurrenceDays: "0,2,4",
		LastFiredAt:    &lastFired,
		Now:            now,
	})
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC), fire)
	require.Equal(t, time.Wednesday, fire.Weekday())

	// Malformed day list has no occurrence
	_, ok = NextFireAt(NextFireInput{
		Type:           domain.ReminderTypeExact,
		ScheduledDate:  "2026-08-31",
		ScheduledTime:  "09:00",
		Recurrence:     domain.RecurrenceCustom,
		RecurrenceDays: "9",
		LastFiredAt:    &lastFired,
		Now:            now,
	})
	require.False(t, ok)
}

func TestNextFireAtMissed(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		name            string
		now             time.Time
		tzOffsetMinutes int
		want            time.Time
	}{
		{
			name: "after 09:00 local fires tomorrow",
			now:  time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC),
			want: time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "before 09:00 local fires today",
			now:  time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC),
			want: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:            "offset shifts the local morning",
			now:             time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC), // 10:30 at UTC+5:30
			tzOffsetMinutes: 330,
			want:            time.Date(2026, 9, 2, 3, 30, 0, 0, time.UTC), // 09:00 local next day
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fire, ok := NextFireAt(NextFireInput{
				Type:            domain.ReminderTypeMissed,
				TZOffsetMinutes: tc.tzOffsetMinutes,
				Now:             tc.now,
			})
			require.True(t, ok)
			if !fire.Equal(tc.want) {
				t.Errorf("NextFireAt() = %v, want %v", fire, tc.want)
			}
		})
	}
}

func TestMissedFireAtUTC(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC)
	want := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	require.Equal(t, want, MissedFireAtUTC(now))

	// Fixed slot regardless of whether 09:00 has passed today
	now = time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	require.Equal(t, want, MissedFireAtUTC(now))
}

func TestNextFireAtDeterministic(t *testing.T) {
	t.Parallel() // Enable parallel execution
	lastFired := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	in := NextFireInput{
		Type:          domain.ReminderTypeExact,
		ScheduledDate: "2026-09-01",
		ScheduledTime: "14:00",
		Recurrence:    domain.RecurrenceDaily,
		LastFiredAt:   &lastFired,
		Now:           time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC),
	}

	first, ok := NextFireAt(in)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := NextFireAt(in)
		require.True(t, ok)
		require.Equal(t, first, again, "same input must give the same instant")
	}
}

func TestNextFireAtStrictlyFuture(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// For every recurrence, a computed occurrence is strictly after now even
	// when the cursor equals now exactly.
	now := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	lastFired := now

	recurrences := []struct {
		recurrence domain.Recurrence
		days       string
	}{
		{recurrence: domain.RecurrenceDaily},
		{recurrence: domain.RecurrenceWeekly},
		{recurrence: domain.RecurrenceWeekdays},
		{recurrence: domain.RecurrenceCustom, days: "0,1,2,3,4,5,6"},
	}

	for _, rc := range recurrences {
		fire, ok := NextFireAt(NextFireInput{
			Type:           domain.ReminderTypeExact,
			ScheduledDate:  "2026-09-01",
			ScheduledTime:  "14:00",
			Recurrence:     rc.recurrence,
			RecurrenceDays: rc.days,
			LastFiredAt:    &lastFired,
			Now:            now,
		})
		require.True(t, ok, "recurrence %q", rc.recurrence)
		if !fire.After(now) {
			t.Errorf("recurrence %q: fire %v not strictly after now %v", rc.recurrence, fire, now)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	t.Parallel() // Enable parallel execution
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := weekdayIndex(monday.AddDate(0, 0, i)); got != i {
			t.Errorf("weekdayIndex(monday+%dd) = %d, want %d", i, got, i)
		}
	}
}
