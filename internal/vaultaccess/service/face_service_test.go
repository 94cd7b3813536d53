package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/facecompare"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/imagestore"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/service"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store/memory"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// stubComparer returns a fixed verdict or error for every call.
type stubComparer struct {
	matched bool
	err     error
	calls   int
}

func (c *stubComparer) Compare(_ context.Context, _, _ string) (bool, error) {
	c.calls++
	return c.matched, c.err
}

func newTestFaceService(comparer service.FaceComparer) (*service.FaceService, *memory.FaceStore, *memory.AlertStore) {
	faces := memory.NewFaceStore()
	alerts := memory.NewAlertStore()
	dispatcher := notify.NewDispatcher()
	alertSvc := service.NewAlertService(alerts, dispatcher, service.AnomalyRule{}, silentLogger())
	images := imagestore.NewMem("http://img.test")
	svc := service.NewFaceService(faces, images, comparer, alertSvc, silentLogger())
	return svc, faces, alerts
}

func faceAlerts(alerts *memory.AlertStore) int {
	var n int
	for _, a := range alerts.Alerts() {
		if a.Category == types.AlertFaceRecognition {
			n++
		}
	}
	return n
}

func TestSubmitComparison_Match(t *testing.T) {
	svc, _, _ := newTestFaceService(&stubComparer{matched: true})

	rec, err := svc.SubmitComparison(context.Background(), strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}

	if rec.MatchState != types.MatchMatched {
		t.Errorf("state = %s, want MATCHED", rec.MatchState)
	}
	if rec.ID == "" {
		t.Error("expected an assigned id")
	}
	if rec.ComparisonImageRef != "http://img.test/faces/"+rec.ID+".jpg" {
		t.Errorf("comparison url = %q", rec.ComparisonImageRef)
	}
	if rec.ReferenceImageRef == nil || *rec.ReferenceImageRef != "http://img.test/ref.jpg" {
		t.Errorf("reference snapshot = %v", rec.ReferenceImageRef)
	}
	if rec.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
}

func TestSubmitComparison_NoMatch_OneAlert(t *testing.T) {
	svc, _, alerts := newTestFaceService(&stubComparer{matched: false})

	rec, err := svc.SubmitComparison(context.Background(), strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}

	if rec.MatchState != types.MatchNotMatched {
		t.Errorf("state = %s, want NOT_MATCHED", rec.MatchState)
	}
	if n := faceAlerts(alerts); n != 1 {
		t.Errorf("expected exactly 1 FACE_RECOGNITION alert, got %d", n)
	}
}

func TestSubmitComparison_BoundaryFailure_Failed(t *testing.T) {
	svc, _, alerts := newTestFaceService(&stubComparer{err: facecompare.ErrBoundary})

	rec, err := svc.SubmitComparison(context.Background(), strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}

	if rec.MatchState != types.MatchFailed {
		t.Errorf("state = %s, want FAILED", rec.MatchState)
	}
	// A comparison occurred, verdict or not.
	if n := faceAlerts(alerts); n != 1 {
		t.Errorf("expected 1 FACE_RECOGNITION alert, got %d", n)
	}
}

func TestSubmitComparison_RetryIsNewRecord(t *testing.T) {
	comparer := &stubComparer{err: facecompare.ErrBoundary}
	svc, _, _ := newTestFaceService(comparer)
	ctx := context.Background()

	failed, err := svc.SubmitComparison(ctx, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}

	// Resubmission creates a distinct record; the FAILED one stays put.
	comparer.err = nil
	comparer.matched = true
	retried, err := svc.SubmitComparison(ctx, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}

	if retried.ID == failed.ID {
		t.Error("retry must get a new id, not mutate the failed record")
	}

	old, err := svc.Face(ctx, failed.ID)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if old.MatchState != types.MatchFailed {
		t.Errorf("failed record changed state to %s", old.MatchState)
	}
}

func TestSubmitComparison_CallerCancellationDoesNotStopCommit(t *testing.T) {
	svc, _, _ := newTestFaceService(&stubComparer{matched: true})

	// The caller's context is already cancelled; the workflow must
	// still commit a terminal state.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := svc.SubmitComparison(ctx, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}
	if rec.MatchState != types.MatchMatched {
		t.Errorf("state = %s, want MATCHED", rec.MatchState)
	}
}

func TestResolve_TerminalStateIsFinal(t *testing.T) {
	faces := memory.NewFaceStore()
	ctx := context.Background()

	now := time.Now().UTC()
	if err := faces.Create(ctx, store.FaceRecord{
		ID:                 "face-1",
		ComparisonImageRef: "http://img.test/faces/face-1.jpg",
		MatchState:         types.MatchPending,
		SubmittedAt:        now,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	applied, err := faces.Resolve(ctx, "face-1", types.MatchNotMatched, now)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if !applied {
		t.Fatal("first resolve must apply")
	}

	// A late verdict for the same id is ignored.
	applied, err = faces.Resolve(ctx, "face-1", types.MatchMatched, now)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if applied {
		t.Error("second resolve must not apply")
	}

	rec, err := faces.Get(ctx, "face-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.MatchState != types.MatchNotMatched {
		t.Errorf("state = %s, want NOT_MATCHED", rec.MatchState)
	}
}

func TestUpdateReference_EmitsAlert(t *testing.T) {
	svc, _, alerts := newTestFaceService(&stubComparer{})

	url, err := svc.UpdateReference(context.Background(), strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("UpdateReference: %v", err)
	}
	if url != "http://img.test/ref.jpg" {
		t.Errorf("reference url = %q", url)
	}

	recs := alerts.Alerts()
	if len(recs) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(recs))
	}
	if recs[0].Message != "Reference face updated" {
		t.Errorf("message = %q", recs[0].Message)
	}
}

func TestSubmitComparison_NilImageRejected(t *testing.T) {
	svc, faces, _ := newTestFaceService(&stubComparer{})

	_, err := svc.SubmitComparison(context.Background(), nil)
	if !errors.Is(err, service.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}

	// No partial effects.
	recs, err := faces.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}
