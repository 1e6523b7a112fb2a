package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/remind-api/internal/api"
	apiMiddleware "github.com/phrazzld/remind-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	reminderHandler := api.NewReminderHandler(app.reminderService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Task endpoints. The fixed-path routes (week, month, date,
		// batch-delete, duplicate) are registered alongside {id}; chi matches
		// static segments before parameters.
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks/batch-delete", taskHandler.DeleteTasks)
		r.Post("/tasks/duplicate", taskHandler.DuplicateTasks)
		r.Get("/tasks/week/{start}", taskHandler.ListWeek)
		r.Delete("/tasks/week/{start}", taskHandler.DeleteWeek)
		r.Get("/tasks/month/{year}/{month}", taskHandler.ListMonth)
		r.Delete("/tasks/month/{year}/{month}", taskHandler.DeleteMonth)
		r.Delete("/tasks/date/{date}", taskHandler.DeleteTasksByDate)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Patch("/tasks/{id}/complete", taskHandler.CompleteTask)
		r.Patch("/tasks/{id}/uncomplete", taskHandler.UncompleteTask)

		// Reminder endpoints
		r.Post("/reminders", reminderHandler.CreateReminder)
		r.Get("/reminders/due", reminderHandler.DueReminders)
		r.Get("/reminders/task/{taskID}", reminderHandler.ListTaskReminders)
		r.Patch("/reminders/{id}/acknowledge", reminderHandler.AcknowledgeReminder)
		r.Patch("/reminders/{id}/snooze", reminderHandler.SnoozeReminder)
		r.Delete("/reminders/{id}", reminderHandler.DeleteReminder)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
