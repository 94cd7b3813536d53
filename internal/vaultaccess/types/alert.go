package types

import "time"

type AlertCategory string

const (
	AlertAccessControl   AlertCategory = "ACCESS_CONTROL"
	AlertSystem          AlertCategory = "SYSTEM"
	AlertSecurity        AlertCategory = "SECURITY"
	AlertFaceRecognition AlertCategory = "FACE_RECOGNITION"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a derived, human-readable notification. Alerts are
// append-only; nothing edits or retracts one after it is written.
type Alert struct {
	ID         int64         `json:"id"`
	Category   AlertCategory `json:"category"`
	Message    string        `json:"message"`
	Severity   Severity      `json:"severity"`
	OccurredAt time.Time     `json:"occurred_at"`
}
