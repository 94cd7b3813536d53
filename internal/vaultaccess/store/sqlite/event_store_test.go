package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	sqlitestore "github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store/sqlite"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

func seedEvent(t *testing.T, s *sqlitestore.EventStore, method types.Method, raw string, at time.Time) int64 {
	t.Helper()
	id, err := s.RecordEvent(context.Background(), store.AccessEventRecord{
		Method:     method,
		RawStatus:  raw,
		Outcome:    types.OutcomeFromStatus(raw),
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("seedEvent: %v", err)
	}
	return id
}

func TestEventStore_RecordEvent_RoundTrip(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewEventStore(conn, newTestWriter(t, conn))

	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	id := seedEvent(t, s, types.MethodAdmin, "TRUE", at)
	if id == 0 {
		t.Fatal("expected a nonzero id")
	}

	events, err := s.ListEvents(context.Background(), store.EventQuery{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got := events[0]
	if got.ID != id {
		t.Errorf("id = %d, want %d", got.ID, id)
	}
	if got.Method != types.MethodAdmin || got.RawStatus != "TRUE" {
		t.Errorf("event = %+v", got)
	}
	if got.Outcome != types.OutcomeGranted {
		t.Errorf("outcome = %s, want GRANTED", got.Outcome)
	}
	if !got.OccurredAt.Equal(at) {
		t.Errorf("occurred_at = %v, want %v", got.OccurredAt, at)
	}
}

func TestEventStore_ListEvents_NewestFirstWithLimit(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewEventStore(conn, newTestWriter(t, conn))

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedEvent(t, s, types.MethodClient, "FALSE", base.Add(time.Duration(i)*time.Minute))
	}

	events, err := s.ListEvents(context.Background(), store.EventQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].OccurredAt.After(events[1].OccurredAt) {
		t.Errorf("not newest first: %v then %v", events[0].OccurredAt, events[1].OccurredAt)
	}
	if !events[0].OccurredAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("newest = %v, want %v", events[0].OccurredAt, base.Add(2*time.Minute))
	}
}

func TestEventStore_ListEvents_Window(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewEventStore(conn, newTestWriter(t, conn))

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	seedEvent(t, s, types.MethodAdmin, "TRUE", base.Add(-time.Hour))
	inWindow := seedEvent(t, s, types.MethodAdmin, "TRUE", base)
	seedEvent(t, s, types.MethodAdmin, "TRUE", base.Add(time.Hour))

	// Since is inclusive, Until exclusive.
	events, err := s.ListEvents(context.Background(), store.EventQuery{
		Since: base,
		Until: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in window, got %d", len(events))
	}
	if events[0].ID != inWindow {
		t.Errorf("wrong event selected: id %d, want %d", events[0].ID, inWindow)
	}
}

func TestEventStore_MethodCounts(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.NewEventStore(conn, newTestWriter(t, conn))

	now := time.Now().UTC()
	seedEvent(t, s, types.MethodAdmin, "TRUE", now)
	seedEvent(t, s, types.MethodAdmin, "FALSE", now)
	seedEvent(t, s, types.MethodClient, "TRUE", now)

	counts, err := s.MethodCounts(context.Background())
	if err != nil {
		t.Fatalf("MethodCounts: %v", err)
	}
	if counts[types.MethodAdmin] != 2 {
		t.Errorf("ADMIN = %d, want 2", counts[types.MethodAdmin])
	}
	if counts[types.MethodClient] != 1 {
		t.Errorf("CLIENT = %d, want 1", counts[types.MethodClient])
	}
}
