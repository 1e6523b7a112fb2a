package scheduler

import "time"

// Clock abstracts the current time so ticks can be driven from a fixed
// instant in tests. The scheduler only ever reads UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the system time.
func SystemClock() Clock { return systemClock{} }
