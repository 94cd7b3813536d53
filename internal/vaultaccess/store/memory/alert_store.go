package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type AlertStore struct {
	mu     sync.Mutex
	nextID int64
	alerts []store.AlertRecord
}

func NewAlertStore() *AlertStore {
	return &AlertStore{nextID: 1}
}

func (s *AlertStore) Append(_ context.Context, rec store.AlertRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	if rec.Severity == "" {
		rec.Severity = types.SeverityInfo
	}
	rec.ID = s.nextID
	s.nextID++
	s.alerts = append(s.alerts, rec)
	return rec.ID, nil
}

func (s *AlertStore) List(_ context.Context, limit int) ([]store.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.AlertRecord, len(s.alerts))
	copy(out, s.alerts)

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Alerts returns a copy of everything appended so far. Test-only helper.
func (s *AlertStore) Alerts() []store.AlertRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AlertRecord, len(s.alerts))
	copy(out, s.alerts)
	return out
}
