package schedule

import "time"

const (
	// WindowBehind is how far in the past a fire instant may lie and still
	// be promoted. It absorbs slow or delayed scheduler ticks.
	WindowBehind = 90 * time.Second

	// WindowAhead is how far in the future a fire instant may lie and still
	// be promoted. It absorbs ticks that run slightly early.
	WindowAhead = 30 * time.Second
)

// InActivationWindow reports whether fireAt falls within the asymmetric
// activation window [now - WindowBehind, now + WindowAhead]. A reminder
// outside the window is either not yet due or was missed by more than the
// tolerated lateness and stays where it is.
func InActivationWindow(fireAt, now time.Time) bool {
	return !fireAt.Before(now.Add(-WindowBehind)) && !fireAt.After(now.Add(WindowAhead))
}
