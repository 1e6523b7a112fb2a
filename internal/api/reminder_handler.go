package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/service"
)

// ReminderHandler handles reminder-related HTTP requests
type ReminderHandler struct {
	reminderService service.ReminderService
	logger          *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderService service.ReminderService, logger *slog.Logger) *ReminderHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReminderHandler")
	}

	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger.With(slog.String("component", "reminder_handler")),
	}
}

// CreateReminder handles POST /reminders requests. The target task is named
// by the task_id body field.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateReminderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	reminder, err := h.reminderService.CreateReminder(r.Context(), service.CreateReminderInput{
		TaskID:          req.TaskID,
		Type:            domain.ReminderType(req.ReminderType),
		BeforeMinutes:   req.BeforeMinutes,
		TZOffsetMinutes: req.TZOffsetMinutes,
		Recurrence:      domain.Recurrence(req.Recurrence),
		RecurrenceDays:  req.RecurrenceDays,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("task_id", req.TaskID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, reminder)
}

// ListTaskReminders handles GET /reminders/task/{taskID} requests
func (h *ReminderHandler) ListTaskReminders(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathUUID(w, r, "taskID", "Task")
	if !ok {
		return
	}

	reminders, err := h.reminderService.ListTaskReminders(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminders)
}

// DueReminders handles GET /reminders/due requests. The response carries the
// server's UTC instant so clients do not depend on their own clock.
func (h *ReminderHandler) DueReminders(w http.ResponseWriter, r *http.Request) {
	due, serverUTC, err := h.reminderService.DueReminders(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if due == nil {
		due = []*domain.Reminder{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DueRemindersResponse{
		Reminders: due,
		ServerUTC: serverUTC,
	})
}

// AcknowledgeReminder handles PATCH /reminders/{id}/acknowledge requests
func (h *ReminderHandler) AcknowledgeReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, ok := pathUUID(w, r, "id", "Reminder")
	if !ok {
		return
	}

	reminder, err := h.reminderService.AcknowledgeReminder(r.Context(), reminderID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminder)
}

// SnoozeReminder handles PATCH /reminders/{id}/snooze requests
func (h *ReminderHandler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	reminderID, ok := pathUUID(w, r, "id", "Reminder")
	if !ok {
		return
	}

	var req SnoozeReminderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	reminder, err := h.reminderService.SnoozeReminder(r.Context(), reminderID, req.Minutes)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminder)
}

// DeleteReminder handles DELETE /reminders/{id} requests
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, ok := pathUUID(w, r, "id", "Reminder")
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(r.Context(), reminderID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathUUID extracts and parses a UUID path parameter, writing a 400 response
// on failure. label names the entity in client-facing messages.
func pathUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, label+" ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}

	return id, true
}
