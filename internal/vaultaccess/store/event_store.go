package store

import (
	"context"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// AccessEventRecord captures a single access attempt for the audit log.
// Outcome is canonicalized from RawStatus at ingest so consumers never
// re-derive the mapping.
type AccessEventRecord struct {
	ID         int64
	Method     types.Method
	RawStatus  string
	Outcome    types.Outcome
	OccurredAt time.Time
}

// EventQuery selects a window of the event log. Zero-valued fields are
// unbounded; Limit <= 0 means no limit.
type EventQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// EventStore persists access attempts as an append-only log.
type EventStore interface {
	// RecordEvent appends one event and returns its assigned id.
	RecordEvent(ctx context.Context, rec AccessEventRecord) (int64, error)

	// ListEvents returns events in the window ordered by occurred_at
	// descending (newest first).
	ListEvents(ctx context.Context, q EventQuery) ([]AccessEventRecord, error)

	// MethodCounts returns per-method totals across the full history.
	MethodCounts(ctx context.Context) (map[types.Method]int64, error)
}
