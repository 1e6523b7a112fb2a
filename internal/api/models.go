package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
)

// Common request/response structures

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title         string `json:"title"          validate:"required,max=500"`
	Description   string `json:"description"    validate:"max=2000"`
	ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduled_time" validate:"required,datetime=15:04"`
}

// UpdateTaskRequest defines the payload for the partial task update endpoint.
// Absent fields leave the task unchanged.
type UpdateTaskRequest struct {
	Title         *string `json:"title,omitempty"          validate:"omitempty,max=500"`
	Description   *string `json:"description,omitempty"    validate:"omitempty,max=2000"`
	ScheduledDate *string `json:"scheduled_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime *string `json:"scheduled_time,omitempty" validate:"omitempty,datetime=15:04"`
	IsCompleted   *bool   `json:"is_completed,omitempty"`
}

// DeleteTasksRequest defines the payload for the batch task delete endpoint.
type DeleteTasksRequest struct {
	TaskIDs []uuid.UUID `json:"task_ids" validate:"required,min=1"`
}

// CreateReminderRequest defines the payload for the reminder creation
// endpoint. TZOffsetMinutes is the client's offset from UTC in minutes.
type CreateReminderRequest struct {
	TaskID          uuid.UUID `json:"task_id"          validate:"required"`
	ReminderType    string    `json:"reminder_type"    validate:"required,oneof=exact before missed"`
	BeforeMinutes   int       `json:"before_minutes"   validate:"gte=0,lte=60"`
	TZOffsetMinutes int       `json:"tz_offset_minutes" validate:"gte=-720,lte=840"`
	Recurrence      string    `json:"recurrence"       validate:"omitempty,oneof=daily weekly weekdays custom"`
	RecurrenceDays  string    `json:"recurrence_days"`
}

// SnoozeReminderRequest defines the payload for the reminder snooze endpoint.
type SnoozeReminderRequest struct {
	Minutes int `json:"minutes" validate:"required,oneof=5 10 30 60"`
}

// DeletedTasksResponse reports the IDs removed by a bulk delete.
type DeletedTasksResponse struct {
	DeletedIDs []uuid.UUID `json:"deleted_ids"`
	Count      int         `json:"count"`
}

// DuplicatedTasksResponse reports the tasks created by a duplication.
type DuplicatedTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Count int            `json:"count"`
}

// DueRemindersResponse carries the due reminders plus the server's UTC
// instant, so clients render countdowns against server time rather than
// their own clock.
type DueRemindersResponse struct {
	Reminders []*domain.Reminder `json:"reminders"`
	ServerUTC time.Time          `json:"server_utc"`
}
