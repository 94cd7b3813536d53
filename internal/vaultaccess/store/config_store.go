package store

import (
	"context"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// ConfigStore holds the single access-control configuration row.
//
// UpdateToggle is a coarse optimistic update: the write is conditioned
// on the *other* feature's toggle still holding expectedOther, in one
// atomic round trip at the storage layer. If the condition fails the
// update is rejected with ErrConflict and the caller must re-read and
// retry; a stale write is never silently applied. Note the predicate
// does not detect two rapid toggles of the same feature — only
// cross-feature races. That is the documented contract.
type ConfigStore interface {
	Get(ctx context.Context) (types.AccessControlConfig, error)

	UpdateToggle(ctx context.Context, feature types.Feature, newValue, expectedOther bool) (types.AccessControlConfig, error)
}
