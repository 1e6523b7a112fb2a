package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Date and time-of-day layouts used for task scheduling fields.
// Dates and times are stored as strings in these layouts; the timezone
// offset is supplied separately by the client when it matters.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)

	// ErrTaskDateInvalid is returned when a task's scheduled date is not a
	// valid YYYY-MM-DD calendar date.
	ErrTaskDateInvalid = fmt.Errorf("%w: task scheduled date must be YYYY-MM-DD", ErrValidation)

	// ErrTaskTimeInvalid is returned when a task's scheduled time is not a
	// valid HH:MM time of day.
	ErrTaskTimeInvalid = fmt.Errorf("%w: task scheduled time must be HH:MM", ErrValidation)
)

// Task represents a single entry on the user's daily schedule.
// ScheduledDate and ScheduledTime are local wall-clock values; the UTC
// offset is supplied per request, not stored on the task.
type Task struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ScheduledDate string     `json:"scheduled_date"`
	ScheduledTime string     `json:"scheduled_time"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewTask creates a new Task with the given title, description, and schedule.
// It generates a new UUID for the task ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewTask(title, description, scheduledDate, scheduledTime string) (*Task, error) {
	task := &Task{
		ID:            uuid.New(),
		Title:         title,
		Description:   description,
		ScheduledDate: scheduledDate,
		ScheduledTime: scheduledTime,
		CreatedAt:     time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if _, err := time.Parse(DateLayout, t.ScheduledDate); err != nil {
		return ErrTaskDateInvalid
	}

	if _, err := time.Parse(TimeLayout, t.ScheduledTime); err != nil {
		return ErrTaskTimeInvalid
	}

	return nil
}

// Complete marks the task as completed at the given instant.
func (t *Task) Complete(now time.Time) {
	t.IsCompleted = true
	completedAt := now.UTC()
	t.CompletedAt = &completedAt
}

// Uncomplete clears the task's completion state.
func (t *Task) Uncomplete() {
	t.IsCompleted = false
	t.CompletedAt = nil
}

// IsMissed reports whether the task is overdue: not completed and scheduled
// on a calendar day strictly before today (both taken in UTC).
func (t *Task) IsMissed(now time.Time) bool {
	if t.IsCompleted {
		return false
	}
	scheduled, err := time.Parse(DateLayout, t.ScheduledDate)
	if err != nil {
		return false
	}
	today, _ := time.Parse(DateLayout, now.UTC().Format(DateLayout))
	return scheduled.Before(today)
}
