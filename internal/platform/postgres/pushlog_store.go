package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// PostgresPushLogStore implements the store.PushLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPushLogStore struct {
	db store.DBTX
}

// NewPostgresPushLogStore creates a new PostgreSQL implementation of the
// PushLogStore interface.
func NewPostgresPushLogStore(db store.DBTX) *PostgresPushLogStore {
	return &PostgresPushLogStore{db: db}
}

// Ensure PostgresPushLogStore implements store.PushLogStore interface
var _ store.PushLogStore = (*PostgresPushLogStore)(nil)

// WasSent implements store.PushLogStore.WasSent
func (s *PostgresPushLogStore) WasSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM push_log
		WHERE sent_date = $1 AND kind = $2 AND task_id IS NOT DISTINCT FROM $3
	)`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, sentDate, kind, taskID).Scan(&exists)
	if err != nil {
		logger.FromContext(ctx).Error("failed to check push log",
			"sent_date", sentDate,
			"kind", kind,
			"error", err)
		return false, store.NewStoreError("push_log", "was_sent", "query failed", err)
	}

	return exists, nil
}

// MarkSent implements store.PushLogStore.MarkSent
// A duplicate insert for the same (date, kind, task) is a silent no-op, so
// concurrent ticks cannot double-record a send.
func (s *PostgresPushLogStore) MarkSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) error {
	query := `
		INSERT INTO push_log (id, sent_date, kind, task_id, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sent_date, kind, task_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, uuid.New(), sentDate, kind, taskID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		logger.FromContext(ctx).Error("failed to record push log entry",
			"sent_date", sentDate,
			"kind", kind,
			"error", err)
		return store.NewStoreError("push_log", "mark_sent", "insert failed", err)
	}

	return nil
}

// WithTx implements store.PushLogStore.WithTx
func (s *PostgresPushLogStore) WithTx(tx *sql.Tx) store.PushLogStore {
	return &PostgresPushLogStore{db: tx}
}
