package service

import (
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

func eventView(rec store.AccessEventRecord) types.AccessEvent {
	return types.AccessEvent{
		ID:         rec.ID,
		Method:     rec.Method,
		RawStatus:  rec.RawStatus,
		Outcome:    rec.Outcome,
		OccurredAt: rec.OccurredAt,
	}
}

func eventViews(recs []store.AccessEventRecord) []types.AccessEvent {
	out := make([]types.AccessEvent, 0, len(recs))
	for _, rec := range recs {
		out = append(out, eventView(rec))
	}
	return out
}

func alertView(rec store.AlertRecord) types.Alert {
	return types.Alert{
		ID:         rec.ID,
		Category:   rec.Category,
		Message:    rec.Message,
		Severity:   rec.Severity,
		OccurredAt: rec.OccurredAt,
	}
}

func alertViews(recs []store.AlertRecord) []types.Alert {
	out := make([]types.Alert, 0, len(recs))
	for _, rec := range recs {
		out = append(out, alertView(rec))
	}
	return out
}

func faceView(rec store.FaceRecord) types.FaceRecord {
	return types.FaceRecord{
		ID:                 rec.ID,
		ReferenceImageRef:  rec.ReferenceImageRef,
		ComparisonImageRef: rec.ComparisonImageRef,
		MatchState:         rec.MatchState,
		SubmittedAt:        rec.SubmittedAt,
		ResolvedAt:         rec.ResolvedAt,
	}
}

func faceViews(recs []store.FaceRecord) []types.FaceRecord {
	out := make([]types.FaceRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, faceView(rec))
	}
	return out
}
