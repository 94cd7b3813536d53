package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/service"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store/memory"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

func newTestEventService(rule service.AnomalyRule) (*service.EventService, *memory.AlertStore, *notify.Dispatcher) {
	alerts := memory.NewAlertStore()
	dispatcher := notify.NewDispatcher()
	alertSvc := service.NewAlertService(alerts, dispatcher, rule, silentLogger())
	svc := service.NewEventService(memory.NewEventStore(), alertSvc, dispatcher)
	return svc, alerts, dispatcher
}

func TestRecord_CanonicalizesOutcome(t *testing.T) {
	svc, _, _ := newTestEventService(service.AnomalyRule{})
	ctx := context.Background()

	ev, err := svc.Record(ctx, "ADMIN", "TRUE", time.Time{})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ev.ID == 0 {
		t.Error("expected an assigned id")
	}
	if ev.Outcome != types.OutcomeGranted {
		t.Errorf("outcome = %s, want GRANTED", ev.Outcome)
	}
	if ev.RawStatus != "TRUE" {
		t.Errorf("raw status rewritten to %q", ev.RawStatus)
	}
	if ev.OccurredAt.IsZero() {
		t.Error("zero occurredAt must default to now")
	}
}

func TestRecord_Validation(t *testing.T) {
	svc, _, _ := newTestEventService(service.AnomalyRule{})
	ctx := context.Background()

	if _, err := svc.Record(ctx, "  ", "TRUE", time.Time{}); !errors.Is(err, service.ErrInvalidMethod) {
		t.Errorf("blank method: got %v", err)
	}
	if _, err := svc.Record(ctx, "ADMIN", "", time.Time{}); !errors.Is(err, service.ErrInvalidStatus) {
		t.Errorf("empty status: got %v", err)
	}

	evs, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 0 {
		t.Errorf("rejected events must not persist, got %d", len(evs))
	}
}

func TestRecord_PublishesAndFeedsAnomalyRule(t *testing.T) {
	svc, alerts, dispatcher := newTestEventService(service.AnomalyRule{
		Threshold: 2,
		Window:    10 * time.Minute,
		Cooldown:  15 * time.Minute,
	})
	ctx := context.Background()

	sub := dispatcher.Subscribe(notify.TopicAccessEvents)
	defer sub.Unsubscribe()

	now := time.Now().UTC()
	if _, err := svc.Record(ctx, "CLIENT", "FALSE", now); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := svc.Record(ctx, "CLIENT", "FALSE", now.Add(time.Second)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	select {
	case <-sub.C():
	default:
		t.Error("expected an access_events signal")
	}

	if n := anomalyCount(alerts); n != 1 {
		t.Errorf("expected 1 anomaly alert from repeated denials, got %d", n)
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, _ := newTestEventService(service.AnomalyRule{})
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i, raw := range []string{"TRUE", "FALSE", "TRUE"} {
		if _, err := svc.Record(ctx, "ADMIN", raw, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	evs, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if !evs[0].OccurredAt.After(evs[1].OccurredAt) {
		t.Errorf("not newest first: %v then %v", evs[0].OccurredAt, evs[1].OccurredAt)
	}
}
