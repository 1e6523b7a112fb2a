// Package service provides application-level services for managing tasks
// and reminders.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is(); the API layer maps each to an HTTP
// status code.
var (
	// ErrTaskCompleted indicates an attempt to attach a reminder to a task
	// that is already completed. Maps to HTTP 400.
	ErrTaskCompleted = errors.New("cannot add a reminder to a completed task")

	// ErrPastFireTime indicates a one-shot reminder whose computed fire
	// time is already in the past and has no future recurrence. Such a
	// configuration is rejected, never persisted. Maps to HTTP 400.
	ErrPastFireTime = errors.New("reminder fire time is already in the past and has no future recurrence")

	// ErrInvalidSnoozeDuration indicates a snooze duration outside the
	// allowed set. Maps to HTTP 400.
	ErrInvalidSnoozeDuration = errors.New("snooze duration must be 5, 10, 30, or 60 minutes")

	// ErrInvalidBeforeMinutes indicates a before-offset outside the allowed
	// set. Maps to HTTP 400.
	ErrInvalidBeforeMinutes = errors.New("before_minutes must be one of 0, 5, 10, 15, 30, or 60")

	// ErrInvalidTZOffset indicates a timezone offset outside the range of
	// real-world UTC offsets. Maps to HTTP 400.
	ErrInvalidTZOffset = errors.New("tz_offset_minutes must be between -720 and 840")

	// ErrInvalidDate indicates a date parameter that is not a valid
	// YYYY-MM-DD calendar date. Maps to HTTP 400.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidMonth indicates a month parameter outside 1..12.
	// Maps to HTTP 400.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")

	// ErrInvalidTargetType indicates a duplicate target outside the allowed
	// set. Maps to HTTP 400.
	ErrInvalidTargetType = errors.New("target_type must be 'weekdays', 'weekend', 'week', or 'month'")

	// ErrNoSourceTasks indicates a duplicate request for a source date with
	// no tasks. Maps to HTTP 404.
	ErrNoSourceTasks = errors.New("no tasks found for the source date")

	// ErrNoTargetDates indicates a duplicate request whose target range
	// contains no dates besides the source itself. Maps to HTTP 400.
	ErrNoTargetDates = errors.New("no valid target dates for duplication")

	// ErrNoTaskIDs indicates a batch delete request with an empty ID list.
	// Maps to HTTP 400.
	ErrNoTaskIDs = errors.New("no task IDs provided")
)
