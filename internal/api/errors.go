package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/service"
	"github.com/phrazzld/remind-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Lifecycle conflicts: the reminder exists but is in the wrong state for
	// the requested transition.
	case domain.IsStateConflict(err):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrNoSourceTasks):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrTaskCompleted),
		errors.Is(err, service.ErrPastFireTime),
		errors.Is(err, service.ErrInvalidSnoozeDuration),
		errors.Is(err, service.ErrInvalidBeforeMinutes),
		errors.Is(err, service.ErrInvalidTZOffset),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidTargetType),
		errors.Is(err, service.ErrNoTargetDates),
		errors.Is(err, service.ErrNoTaskIDs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Internal details never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case domain.IsStateConflict(err):
		// The conflict message only names the two lifecycle states, which is
		// safe to expose and needed by clients to resolve the conflict.
		var conflict *domain.StateConflictError
		if errors.As(err, &conflict) {
			return conflict.Error()
		}
		return "Reminder is in the wrong state for this operation"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrReminderNotFound):
		return "Reminder not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrNoSourceTasks):
		return "No tasks found for the source date"

	// Validation and option-set errors carry messages written for clients.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrTaskCompleted),
		errors.Is(err, service.ErrPastFireTime),
		errors.Is(err, service.ErrInvalidSnoozeDuration),
		errors.Is(err, service.ErrInvalidBeforeMinutes),
		errors.Is(err, service.ErrInvalidTZOffset),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidMonth),
		errors.Is(err, service.ErrInvalidTargetType),
		errors.Is(err, service.ErrNoTargetDates),
		errors.Is(err, service.ErrNoTaskIDs):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateTaskRequest.Title' Error:Field
		// validation for 'Title' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "datetime":
		return "invalid date or time format"
	case "oneof":
		return "invalid value"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte", "lte":
		return "out of range"
	default:
		return "validation failed"
	}
}
