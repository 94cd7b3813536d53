package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type FaceStore struct {
	mu    sync.Mutex
	faces map[string]store.FaceRecord
}

func NewFaceStore() *FaceStore {
	return &FaceStore{faces: make(map[string]store.FaceRecord)}
}

func (s *FaceStore) Create(_ context.Context, rec store.FaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	if rec.MatchState == "" {
		rec.MatchState = types.MatchPending
	}
	s.faces[rec.ID] = rec
	return nil
}

func (s *FaceStore) Get(_ context.Context, id string) (store.FaceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.faces[id]
	if !ok {
		return store.FaceRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *FaceStore) List(_ context.Context) ([]store.FaceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.FaceRecord, 0, len(s.faces))
	for _, rec := range s.faces {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *FaceStore) Resolve(_ context.Context, id string, state types.MatchState, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.faces[id]
	if !ok || rec.MatchState != types.MatchPending {
		return false, nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec.MatchState = state
	rec.ResolvedAt = &at
	s.faces[id] = rec
	return true, nil
}

func (s *FaceStore) FailStale(_ context.Context, cutoff time.Time, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at.IsZero() {
		at = time.Now().UTC()
	}

	var n int64
	for id, rec := range s.faces {
		if rec.MatchState != types.MatchPending || !rec.SubmittedAt.Before(cutoff) {
			continue
		}
		resolvedAt := at
		rec.MatchState = types.MatchFailed
		rec.ResolvedAt = &resolvedAt
		s.faces[id] = rec
		n++
	}
	return n, nil
}
