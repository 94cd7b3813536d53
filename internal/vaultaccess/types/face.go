package types

import "time"

// MatchState tracks a submitted comparison image through the match
// workflow. PENDING transitions exactly once to one of the terminal
// states and never reverts.
type MatchState string

const (
	MatchPending    MatchState = "PENDING"
	MatchMatched    MatchState = "MATCHED"
	MatchNotMatched MatchState = "NOT_MATCHED"
	MatchFailed     MatchState = "FAILED"
)

// Terminal reports whether no further transition is permitted.
func (s MatchState) Terminal() bool {
	return s == MatchMatched || s == MatchNotMatched || s == MatchFailed
}

// FaceRecord is the unit of work for one face comparison.
// ReferenceImageRef snapshots the reference image URI that was current
// when the comparison was submitted; the reference slot itself is
// overwritten, not versioned.
type FaceRecord struct {
	ID                 string     `json:"id"`
	ReferenceImageRef  *string    `json:"reference_image_url,omitempty"`
	ComparisonImageRef string     `json:"comparison_image_url"`
	MatchState         MatchState `json:"match_state"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}
