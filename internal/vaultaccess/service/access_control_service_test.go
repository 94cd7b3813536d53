package service_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/service"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store/memory"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestAccessControl wires an AccessControlService over in-memory
// stores, returning the alert store so tests can inspect emitted alerts.
func newTestAccessControl(initial types.AccessControlConfig) (*service.AccessControlService, *memory.AlertStore, *notify.Dispatcher) {
	alerts := memory.NewAlertStore()
	dispatcher := notify.NewDispatcher()
	alertSvc := service.NewAlertService(alerts, dispatcher, service.AnomalyRule{}, silentLogger())
	svc := service.NewAccessControlService(memory.NewConfigStore(initial), alertSvc, dispatcher)
	return svc, alerts, dispatcher
}

func TestUpdateToggle_EnableFingerprint(t *testing.T) {
	svc, alerts, _ := newTestAccessControl(types.AccessControlConfig{
		RFIDEnabled:        true,
		FingerprintEnabled: false,
	})

	// Operator last observed RFID=true, toggles fingerprint on.
	cfg, err := svc.UpdateToggle(context.Background(), types.FeatureFingerprint, true, true)
	if err != nil {
		t.Fatalf("UpdateToggle: %v", err)
	}

	if !cfg.RFIDEnabled || !cfg.FingerprintEnabled {
		t.Errorf("expected both enabled, got %+v", cfg)
	}

	recs := alerts.Alerts()
	if len(recs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(recs))
	}
	if recs[0].Category != types.AlertAccessControl {
		t.Errorf("category = %s, want ACCESS_CONTROL", recs[0].Category)
	}
	if recs[0].Message != "Fingerprint access enabled" {
		t.Errorf("message = %q, want %q", recs[0].Message, "Fingerprint access enabled")
	}
	if recs[0].Severity != types.SeverityInfo {
		t.Errorf("severity = %s, want info", recs[0].Severity)
	}
}

func TestUpdateToggle_IdempotentWithoutContention(t *testing.T) {
	svc, alerts, _ := newTestAccessControl(types.AccessControlConfig{
		RFIDEnabled:        true,
		FingerprintEnabled: false,
	})

	ctx := context.Background()
	first, err := svc.UpdateToggle(ctx, types.FeatureRFID, false, false)
	if err != nil {
		t.Fatalf("first UpdateToggle: %v", err)
	}
	second, err := svc.UpdateToggle(ctx, types.FeatureRFID, false, false)
	if err != nil {
		t.Fatalf("second UpdateToggle: %v", err)
	}

	if first != second {
		t.Errorf("states differ: %+v vs %+v", first, second)
	}
	// Alerts are not deduplicated: one per call.
	if n := len(alerts.Alerts()); n != 2 {
		t.Errorf("expected 2 alerts, got %d", n)
	}
}

func TestUpdateToggle_ConflictOnStaleOther(t *testing.T) {
	svc, _, _ := newTestAccessControl(types.AccessControlConfig{
		RFIDEnabled:        true,
		FingerprintEnabled: false,
	})
	ctx := context.Background()

	// Someone else flips RFID off.
	if _, err := svc.UpdateToggle(ctx, types.FeatureRFID, false, false); err != nil {
		t.Fatalf("setup toggle: %v", err)
	}

	// This caller still believes RFID=true; the update must be
	// rejected, not silently applied over stale state.
	_, err := svc.UpdateToggle(ctx, types.FeatureFingerprint, true, true)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateToggle_ConcurrentCrossFeature_OneWins(t *testing.T) {
	svc, _, _ := newTestAccessControl(types.AccessControlConfig{
		RFIDEnabled:        true,
		FingerprintEnabled: true,
	})
	ctx := context.Background()

	// Both operators read {RFID:true, FINGERPRINT:true} and toggle
	// different features concurrently. Exactly one must succeed and
	// one must conflict; two silent successes would drop a change.
	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.UpdateToggle(ctx, types.FeatureRFID, false, true)
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.UpdateToggle(ctx, types.FeatureFingerprint, false, true)
		results <- err
	}()
	wg.Wait()
	close(results)

	var ok, conflict int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 || conflict != 1 {
		t.Errorf("expected 1 success and 1 conflict, got %d/%d", ok, conflict)
	}
}

func TestUpdateToggle_UnknownFeature(t *testing.T) {
	svc, alerts, _ := newTestAccessControl(types.AccessControlConfig{})

	_, err := svc.UpdateToggle(context.Background(), "DOORBELL", true, false)
	if !errors.Is(err, service.ErrInvalidFeature) {
		t.Fatalf("expected ErrInvalidFeature, got %v", err)
	}
	if n := len(alerts.Alerts()); n != 0 {
		t.Errorf("validation failure must not emit alerts, got %d", n)
	}
}

func TestUpdateToggle_PublishesConfigTopic(t *testing.T) {
	svc, _, dispatcher := newTestAccessControl(types.AccessControlConfig{
		RFIDEnabled:        false,
		FingerprintEnabled: false,
	})

	sub := dispatcher.Subscribe(notify.TopicConfig)
	defer sub.Unsubscribe()

	if _, err := svc.UpdateToggle(context.Background(), types.FeatureRFID, true, false); err != nil {
		t.Fatalf("UpdateToggle: %v", err)
	}

	select {
	case <-sub.C():
	default:
		t.Error("expected a config change signal")
	}
}
