// Package scheduler contains the periodic reminder tick: promoting pending
// and snoozed reminders whose fire instant has arrived, re-arming
// acknowledged recurring reminders, and flagging missed tasks. Each tick
// runs inside a single database transaction and is safe to re-run; ticks
// never overlap.
package scheduler
