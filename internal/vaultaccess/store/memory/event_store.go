package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// EventStore is an in-memory append-only log of access events.
// Intended for tests and dev environments.
type EventStore struct {
	mu     sync.Mutex
	nextID int64
	events []store.AccessEventRecord
}

func NewEventStore() *EventStore {
	return &EventStore{nextID: 1}
}

func (s *EventStore) RecordEvent(_ context.Context, rec store.AccessEventRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	rec.ID = s.nextID
	s.nextID++
	s.events = append(s.events, rec)
	return rec.ID, nil
}

func (s *EventStore) ListEvents(_ context.Context, q store.EventQuery) ([]store.AccessEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessEventRecord
	for _, rec := range s.events {
		if !q.Since.IsZero() && rec.OccurredAt.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && !rec.OccurredAt.Before(q.Until) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *EventStore) MethodCounts(_ context.Context) (map[types.Method]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[types.Method]int64)
	for _, rec := range s.events {
		out[rec.Method]++
	}
	return out, nil
}
