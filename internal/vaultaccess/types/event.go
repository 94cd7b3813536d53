package types

import (
	"strings"
	"time"
)

// Method identifies how an access attempt was made. The hardware
// integration reports free-form strings; ADMIN and CLIENT are the two
// buckets the dashboard charts, USER appears in older logs.
type Method string

const (
	MethodAdmin  Method = "ADMIN"
	MethodClient Method = "CLIENT"
	MethodUser   Method = "USER"
)

// SystemActor is the sentinel method recorded for automated actions.
// It is excluded from unique-actor counts.
const SystemActor Method = "System"

// Outcome is the canonical three-way result of an access attempt.
// Every event is exactly one of the three.
type Outcome string

const (
	OutcomeGranted Outcome = "GRANTED"
	OutcomeDenied  Outcome = "DENIED"
	OutcomeUnknown Outcome = "UNKNOWN"
)

// OutcomeFromStatus canonicalizes a raw status string reported by the
// access hardware. The devices write literal "TRUE"/"FALSE"; some
// firmware revisions write prose containing "success"/"fail" instead.
// Anything unrecognized is UNKNOWN and counts toward neither grants
// nor denials.
func OutcomeFromStatus(raw string) Outcome {
	switch {
	case raw == "TRUE":
		return OutcomeGranted
	case raw == "FALSE":
		return OutcomeDenied
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "success"):
		return OutcomeGranted
	case strings.Contains(lower, "fail"):
		return OutcomeDenied
	}
	return OutcomeUnknown
}

// AccessEvent is a single recorded entry attempt. Immutable once
// created; the core only reads events, it never edits them.
type AccessEvent struct {
	ID         int64     `json:"id"`
	Method     Method    `json:"method"`
	RawStatus  string    `json:"raw_status"`
	Outcome    Outcome   `json:"outcome"`
	OccurredAt time.Time `json:"occurred_at"`
}
