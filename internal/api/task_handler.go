// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/api/shared"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.CreateTask(
		r.Context(), req.Title, req.Description, req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /tasks requests with optional date, skip, and limit
// query parameters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	tasks, err := h.taskService.ListTasks(r.Context(), date, skip, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListWeek handles GET /tasks/week/{start} requests. The start path
// parameter anchors a 7-day window.
func (h *TaskHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	startDate := chi.URLParam(r, "start")
	if startDate == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "start date is required")
		return
	}

	tasks, err := h.taskService.ListWeek(r.Context(), startDate)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ListMonth handles GET /tasks/month/{year}/{month} requests.
func (h *TaskHandler) ListMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMonth(r.Context(), year, month)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateTask handles PUT /tasks/{id} requests. Absent body fields leave the
// task unchanged.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, service.TaskUpdate{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		IsCompleted:   req.IsCompleted,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// CompleteTask handles PATCH /tasks/{id}/complete requests
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UncompleteTask handles PATCH /tasks/{id}/uncomplete requests
func (h *TaskHandler) UncompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.UncompleteTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTasks handles POST /tasks/batch-delete requests
func (h *TaskHandler) DeleteTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DeleteTasksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	deleted, err := h.taskService.DeleteTasks(r.Context(), req.TaskIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedTasksResponse{
		DeletedIDs: deleted,
		Count:      len(deleted),
	})
}

// DeleteTasksByDate handles DELETE /tasks/date/{date} requests
func (h *TaskHandler) DeleteTasksByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	deleted, err := h.taskService.DeleteTasksByDate(r.Context(), date)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedTasksResponse{
		DeletedIDs: deleted,
		Count:      len(deleted),
	})
}

// DeleteWeek handles DELETE /tasks/week/{start} requests. The start path
// parameter anchors a 7-day window.
func (h *TaskHandler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	startDate := chi.URLParam(r, "start")
	if startDate == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "start date is required")
		return
	}

	deleted, err := h.taskService.DeleteWeek(r.Context(), startDate)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedTasksResponse{
		DeletedIDs: deleted,
		Count:      len(deleted),
	})
}

// DeleteMonth handles DELETE /tasks/month/{year}/{month} requests.
func (h *TaskHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	deleted, err := h.taskService.DeleteMonth(r.Context(), year, month)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedTasksResponse{
		DeletedIDs: deleted,
		Count:      len(deleted),
	})
}

// DuplicateTasks handles POST /tasks/duplicate requests with source_date and
// target_type query parameters.
func (h *TaskHandler) DuplicateTasks(w http.ResponseWriter, r *http.Request) {
	sourceDate := r.URL.Query().Get("source_date")
	targetType := r.URL.Query().Get("target_type")
	if sourceDate == "" || targetType == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "source_date and target_type are required")
		return
	}

	created, err := h.taskService.DuplicateTasks(r.Context(), sourceDate, targetType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, DuplicatedTasksResponse{
		Tasks: created,
		Count: len(created),
	})
}

// taskIDFromPath extracts and parses the {id} path parameter, writing a 400
// response on failure.
func (h *TaskHandler) taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		log.Warn("task ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}

	taskID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid task ID format", slog.String("task_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}

	return taskID, true
}

// yearMonthParams extracts the year and month path parameters, writing a 400
// response on failure.
func yearMonthParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "year must be a positive integer")
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "month must be an integer")
		return 0, 0, false
	}
	return year, month, true
}

// queryInt parses an integer query parameter, falling back to a default when
// absent or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
