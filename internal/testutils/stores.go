// Package testutils provides in-memory store implementations and a fixed
// clock for exercising services, the scheduler, and the push digest without
// a database.
package testutils

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

// FakeClock returns a fixed instant from Now.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFakeClock creates a clock frozen at the given instant.
func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{current: at.UTC()}
}

// Now returns the clock's current instant.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set moves the clock to the given instant.
func (c *FakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = at.UTC()
}

// InMemoryTaskStore is a map-backed TaskStore.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// NewInMemoryTaskStore creates an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements store.TaskStore.
func (s *InMemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// CreateMultiple implements store.TaskStore.
func (s *InMemoryTaskStore) CreateMultiple(ctx context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		if err := s.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *InMemoryTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// List implements store.TaskStore.
func (s *InMemoryTaskStore) List(ctx context.Context, date string, skip, limit int) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Task
	for _, task := range s.tasks {
		if date != "" && task.ScheduledDate != date {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}
	sortTasks(matched)

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// ListDateRange implements store.TaskStore.
func (s *InMemoryTaskStore) ListDateRange(ctx context.Context, startDate, endDate string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Task
	for _, task := range s.tasks {
		if task.ScheduledDate < startDate || task.ScheduledDate > endDate {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}
	sortTasks(matched)
	return matched, nil
}

// ListOverdue implements store.TaskStore.
func (s *InMemoryTaskStore) ListOverdue(ctx context.Context, startDate, endDate string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Task
	for _, task := range s.tasks {
		if task.IsCompleted {
			continue
		}
		if task.ScheduledDate < startDate || task.ScheduledDate > endDate {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}
	sortTasks(matched)
	return matched, nil
}

// Update implements store.TaskStore.
func (s *InMemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// Delete implements store.TaskStore.
func (s *InMemoryTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// DeleteBatch implements store.TaskStore.
func (s *InMemoryTaskStore) DeleteBatch(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []uuid.UUID
	for _, id := range ids {
		if _, ok := s.tasks[id]; ok {
			delete(s.tasks, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

// DeleteDateRange implements store.TaskStore.
func (s *InMemoryTaskStore) DeleteDateRange(ctx context.Context, startDate, endDate string) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []uuid.UUID
	for id, task := range s.tasks {
		if task.ScheduledDate < startDate || task.ScheduledDate > endDate {
			continue
		}
		delete(s.tasks, id)
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// WithTx implements store.TaskStore. The in-memory store has no transactions;
// it returns itself.
func (s *InMemoryTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// Count returns the number of stored tasks.
func (s *InMemoryTaskStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func sortTasks(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ScheduledDate != tasks[j].ScheduledDate {
			return tasks[i].ScheduledDate < tasks[j].ScheduledDate
		}
		return tasks[i].ScheduledTime < tasks[j].ScheduledTime
	})
}

// InMemoryReminderStore is a map-backed ReminderStore.
type InMemoryReminderStore struct {
	mu        sync.RWMutex
	reminders map[uuid.UUID]*domain.Reminder
}

// NewInMemoryReminderStore creates an empty in-memory reminder store.
func NewInMemoryReminderStore() *InMemoryReminderStore {
	return &InMemoryReminderStore{reminders: make(map[uuid.UUID]*domain.Reminder)}
}

// Create implements store.ReminderStore.
func (s *InMemoryReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	if err := reminder.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *reminder
	s.reminders[reminder.ID] = &copied
	return nil
}

// GetByID implements store.ReminderStore.
func (s *InMemoryReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reminder, ok := s.reminders[id]
	if !ok {
		return nil, store.ErrReminderNotFound
	}
	copied := *reminder
	return &copied, nil
}

// ListByTask implements store.ReminderStore.
func (s *InMemoryReminderStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Reminder
	for _, reminder := range s.reminders {
		if reminder.TaskID == taskID {
			copied := *reminder
			matched = append(matched, &copied)
		}
	}
	sortReminders(matched)
	return matched, nil
}

// ListDue implements store.ReminderStore.
func (s *InMemoryReminderStore) ListDue(ctx context.Context) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Reminder
	for _, reminder := range s.reminders {
		if reminder.Status == domain.ReminderStatusDue {
			copied := *reminder
			matched = append(matched, &copied)
		}
	}
	sortReminders(matched)
	return matched, nil
}

// ListFireCandidates implements store.ReminderStore.
func (s *InMemoryReminderStore) ListFireCandidates(ctx context.Context, from, until time.Time) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Reminder
	for _, reminder := range s.reminders {
		if reminder.Status != domain.ReminderStatusPending && reminder.Status != domain.ReminderStatusSnoozed {
			continue
		}
		if reminder.NextFireAt == nil {
			continue
		}
		at := *reminder.NextFireAt
		if at.Before(from) || at.After(until) {
			continue
		}
		copied := *reminder
		matched = append(matched, &copied)
	}
	sortReminders(matched)
	return matched, nil
}

// ListAcknowledgedRecurring implements store.ReminderStore.
func (s *InMemoryReminderStore) ListAcknowledgedRecurring(ctx context.Context) ([]*domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*domain.Reminder
	for _, reminder := range s.reminders {
		if reminder.Status == domain.ReminderStatusAcknowledged && reminder.IsRecurring() {
			copied := *reminder
			matched = append(matched, &copied)
		}
	}
	sortReminders(matched)
	return matched, nil
}

// HasActiveMissedReminder implements store.ReminderStore.
func (s *InMemoryReminderStore) HasActiveMissedReminder(ctx context.Context, taskID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reminder := range s.reminders {
		if reminder.TaskID != taskID || reminder.Type != domain.ReminderTypeMissed {
			continue
		}
		switch reminder.Status {
		case domain.ReminderStatusPending, domain.ReminderStatusDue, domain.ReminderStatusSnoozed:
			return true, nil
		}
	}
	return false, nil
}

// Update implements store.ReminderStore.
func (s *InMemoryReminderStore) Update(ctx context.Context, reminder *domain.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[reminder.ID]; !ok {
		return store.ErrReminderNotFound
	}
	copied := *reminder
	s.reminders[reminder.ID] = &copied
	return nil
}

// Delete implements store.ReminderStore.
func (s *InMemoryReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[id]; !ok {
		return store.ErrReminderNotFound
	}
	delete(s.reminders, id)
	return nil
}

// WithTx implements store.ReminderStore. The in-memory store has no
// transactions; it returns itself.
func (s *InMemoryReminderStore) WithTx(tx *sql.Tx) store.ReminderStore { return s }

func sortReminders(reminders []*domain.Reminder) {
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].CreatedAt.After(reminders[j].CreatedAt)
	})
}

// pushLogKey identifies one dedup entry.
type pushLogKey struct {
	sentDate string
	kind     string
	taskID   uuid.UUID
	hasTask  bool
}

// InMemoryPushLogStore is a map-backed PushLogStore.
type InMemoryPushLogStore struct {
	mu   sync.Mutex
	sent map[pushLogKey]bool
}

// NewInMemoryPushLogStore creates an empty in-memory push log.
func NewInMemoryPushLogStore() *InMemoryPushLogStore {
	return &InMemoryPushLogStore{sent: make(map[pushLogKey]bool)}
}

func makePushLogKey(sentDate, kind string, taskID *uuid.UUID) pushLogKey {
	key := pushLogKey{sentDate: sentDate, kind: kind}
	if taskID != nil {
		key.taskID = *taskID
		key.hasTask = true
	}
	return key
}

// WasSent implements store.PushLogStore.
func (s *InMemoryPushLogStore) WasSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[makePushLogKey(sentDate, kind, taskID)], nil
}

// MarkSent implements store.PushLogStore.
func (s *InMemoryPushLogStore) MarkSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[makePushLogKey(sentDate, kind, taskID)] = true
	return nil
}

// WithTx implements store.PushLogStore. The in-memory store has no
// transactions; it returns itself.
func (s *InMemoryPushLogStore) WithTx(tx *sql.Tx) store.PushLogStore { return s }

// SentCount returns the number of recorded sends.
func (s *InMemoryPushLogStore) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
