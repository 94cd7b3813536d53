package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

var (
	ErrInvalidAlertCategory = errors.New("category is required")
	ErrInvalidAlertMessage  = errors.New("message is required")
	ErrInvalidSeverity      = errors.New("severity must be info, warning, or error")
)

// AnomalyRule configures the repeated-failure alert. Threshold <= 0
// disables the rule.
type AnomalyRule struct {
	// Threshold is how many denials within Window trigger the alert.
	Threshold int
	// Window is the trailing period denials are counted over.
	Window time.Duration
	// Cooldown is the minimum gap between two anomaly alerts, so a
	// burst of denials produces one warning rather than a storm.
	Cooldown time.Duration
}

// AlertService translates domain actions into alert records and
// appends externally reported alerts. Alerts are append-only; nothing
// here edits or retracts one.
type AlertService struct {
	alerts     store.AlertStore
	dispatcher *notify.Dispatcher
	logger     *log.Logger

	rule AnomalyRule

	mu          sync.Mutex
	denials     []time.Time
	lastAnomaly time.Time
}

func NewAlertService(as store.AlertStore, d *notify.Dispatcher, rule AnomalyRule, logger *log.Logger) *AlertService {
	return &AlertService{alerts: as, dispatcher: d, rule: rule, logger: logger}
}

// Report appends one alert on behalf of an external collaborator.
func (s *AlertService) Report(ctx context.Context, category types.AlertCategory, message string, severity types.Severity) (types.Alert, error) {
	if strings.TrimSpace(string(category)) == "" {
		return types.Alert{}, ErrInvalidAlertCategory
	}
	if strings.TrimSpace(message) == "" {
		return types.Alert{}, ErrInvalidAlertMessage
	}
	switch severity {
	case types.SeverityInfo, types.SeverityWarning, types.SeverityError:
	case "":
		severity = types.SeverityInfo
	default:
		return types.Alert{}, ErrInvalidSeverity
	}

	rec := store.AlertRecord{
		Category:   category,
		Message:    message,
		Severity:   severity,
		OccurredAt: time.Now().UTC(),
	}
	id, err := s.alerts.Append(ctx, rec)
	if err != nil {
		return types.Alert{}, err
	}
	rec.ID = id
	s.dispatcher.Publish(notify.TopicAlerts)
	return alertView(rec), nil
}

// List returns the newest alerts first. limit <= 0 means all.
func (s *AlertService) List(ctx context.Context, limit int) ([]types.Alert, error) {
	recs, err := s.alerts.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return alertViews(recs), nil
}

// ConfigToggled records the ACCESS_CONTROL alert for a committed
// toggle, e.g. "Fingerprint access enabled".
func (s *AlertService) ConfigToggled(ctx context.Context, feature types.Feature, enabled bool) {
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	s.emit(ctx, types.AlertAccessControl,
		fmt.Sprintf("%s access %s", feature.DisplayName(), state), types.SeverityInfo)
}

// ReferenceUpdated records the alert for a committed reference-image
// replacement.
func (s *AlertService) ReferenceUpdated(ctx context.Context) {
	s.emit(ctx, types.AlertFaceRecognition, "Reference face updated", types.SeverityInfo)
}

// FaceCompared records that a comparison completed, whatever the
// verdict was.
func (s *AlertService) FaceCompared(ctx context.Context) {
	s.emit(ctx, types.AlertFaceRecognition, "New face compared with reference", types.SeverityInfo)
}

// NoteOutcome feeds the anomaly rule with each recorded event outcome.
// When denials within the trailing window reach the threshold, one
// SYSTEM warning is emitted, then the rule stays quiet for the
// cooldown.
func (s *AlertService) NoteOutcome(ctx context.Context, outcome types.Outcome, at time.Time) {
	if s.rule.Threshold <= 0 || outcome != types.OutcomeDenied {
		return
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	s.mu.Lock()
	cutoff := at.Add(-s.rule.Window)
	kept := s.denials[:0]
	for _, t := range s.denials {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.denials = append(kept, at)

	fire := len(s.denials) >= s.rule.Threshold &&
		(s.lastAnomaly.IsZero() || at.Sub(s.lastAnomaly) >= s.rule.Cooldown)
	if fire {
		s.lastAnomaly = at
	}
	s.mu.Unlock()

	if fire {
		s.emit(ctx, types.AlertSystem, "Multiple failed access attempts detected", types.SeverityWarning)
	}
}

// emit is for rule-driven alerts: a failed append is logged and
// dropped rather than propagated, because an alert write must never
// take down the action that triggered it.
func (s *AlertService) emit(ctx context.Context, category types.AlertCategory, message string, severity types.Severity) {
	_, err := s.alerts.Append(ctx, store.AlertRecord{
		Category:   category,
		Message:    message,
		Severity:   severity,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Printf("alert append failed (%s): %v", message, err)
		return
	}
	s.dispatcher.Publish(notify.TopicAlerts)
}
