package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// PushLogStore records which push notifications have already been sent on a
// given calendar date. It replaces in-process "already sent today"
// bookkeeping so dedup survives restarts and holds across processes.
type PushLogStore interface {
	// WasSent reports whether a notification of the given kind (and task,
	// for per-task kinds; nil otherwise) was already sent on sentDate
	// (YYYY-MM-DD, local to the configured offset).
	WasSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) (bool, error)

	// MarkSent records that a notification was sent. Inserting a duplicate
	// (same date, kind, and task) is a silent no-op.
	MarkSent(ctx context.Context, sentDate, kind string, taskID *uuid.UUID) error

	// WithTx returns a PushLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) PushLogStore
}
