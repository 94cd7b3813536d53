package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

var (
	ErrInvalidMethod = errors.New("method is required")
	ErrInvalidStatus = errors.New("status is required")
)

// EventService ingests access events from the hardware integration
// layer: validate, canonicalize the raw status once at the boundary,
// append, then signal observers and the anomaly rule.
type EventService struct {
	events     store.EventStore
	alerts     *AlertService
	dispatcher *notify.Dispatcher
}

func NewEventService(es store.EventStore, alerts *AlertService, d *notify.Dispatcher) *EventService {
	return &EventService{events: es, alerts: alerts, dispatcher: d}
}

// Record appends one access event. occurredAt may be zero for "now".
// Validation failures reject the event before any state change.
func (s *EventService) Record(ctx context.Context, method, rawStatus string, occurredAt time.Time) (types.AccessEvent, error) {
	method = strings.TrimSpace(method)
	rawStatus = strings.TrimSpace(rawStatus)

	if method == "" {
		return types.AccessEvent{}, ErrInvalidMethod
	}
	if rawStatus == "" {
		return types.AccessEvent{}, ErrInvalidStatus
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	rec := store.AccessEventRecord{
		Method:     types.Method(method),
		RawStatus:  rawStatus,
		Outcome:    types.OutcomeFromStatus(rawStatus),
		OccurredAt: occurredAt.UTC(),
	}

	id, err := s.events.RecordEvent(ctx, rec)
	if err != nil {
		return types.AccessEvent{}, err
	}
	rec.ID = id

	s.dispatcher.Publish(notify.TopicAccessEvents)
	s.alerts.NoteOutcome(ctx, rec.Outcome, rec.OccurredAt)

	return eventView(rec), nil
}

// List returns the newest events first. limit <= 0 means all.
func (s *EventService) List(ctx context.Context, limit int) ([]types.AccessEvent, error) {
	recs, err := s.events.ListEvents(ctx, store.EventQuery{Limit: limit})
	if err != nil {
		return nil, err
	}
	return eventViews(recs), nil
}
