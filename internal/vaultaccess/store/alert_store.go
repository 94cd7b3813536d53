package store

import (
	"context"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type AlertRecord struct {
	ID         int64
	Category   types.AlertCategory
	Message    string
	Severity   types.Severity
	OccurredAt time.Time
}

// AlertStore persists alerts as an append-only feed.
type AlertStore interface {
	// Append writes one alert and returns its assigned id.
	Append(ctx context.Context, rec AlertRecord) (int64, error)

	// List returns the newest alerts first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]AlertRecord, error)
}
