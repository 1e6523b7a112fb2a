// Package schedule implements the pure fire-time arithmetic for reminders:
// mapping a reminder configuration and the current instant to the next UTC
// instant the reminder should fire, and the activation window that decides
// when a scheduler tick is allowed to promote it.
//
// Everything here is a pure function of its inputs. All arithmetic is done
// on naive UTC instants; local time enters only through the single addition
// or subtraction of the caller-supplied timezone offset. The scheduler
// relies on this determinism for idempotent re-ticking.
package schedule
