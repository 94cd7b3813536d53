package store

import (
	"context"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type FaceRecord struct {
	ID                 string
	ReferenceImageRef  *string
	ComparisonImageRef string
	MatchState         types.MatchState
	SubmittedAt        time.Time
	ResolvedAt         *time.Time
}

// FaceStore persists face comparison records. A record is created
// PENDING and moved to exactly one terminal state by Resolve or
// FailStale; the conditional updates below are what enforce the
// single-transition invariant.
type FaceStore interface {
	Create(ctx context.Context, rec FaceRecord) error

	Get(ctx context.Context, id string) (FaceRecord, error)

	// List returns all records ordered by submission time descending.
	List(ctx context.Context) ([]FaceRecord, error)

	// Resolve moves the record to the given terminal state if and only
	// if it is still PENDING. Returns false (with nil error) when the
	// record was already terminal or does not exist; late boundary
	// responses are ignored this way.
	Resolve(ctx context.Context, id string, state types.MatchState, at time.Time) (bool, error)

	// FailStale marks every PENDING record submitted before cutoff as
	// FAILED and returns how many rows changed.
	FailStale(ctx context.Context, cutoff time.Time, at time.Time) (int64, error)
}
