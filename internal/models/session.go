// Package models defines conversation session structures for LeavePipe.
package models

import "time"

// SessionState represents the submitter conversation state.
type SessionState string

const (
	// StateInitial is the entry state for a fresh session.
	StateInitial SessionState = "initial"
	// StateCollectingInfo collects the missing day-count/reason fields.
	StateCollectingInfo SessionState = "collecting_info"
	// StateConfirming awaits a yes/no on the rendered summary.
	StateConfirming SessionState = "confirming"
	// StateSelectingSubstitute awaits a substitute name or a skip.
	StateSelectingSubstitute SessionState = "selecting_substitute"
)

// LeaveDraft holds the partially collected leave details for a session.
// Zero values mean "not yet provided".
type LeaveDraft struct {
	Days           int    `json:"days,omitempty"`
	Reason         string `json:"reason,omitempty"`
	SubstituteName string `json:"substitute_name,omitempty"`
	SubstituteNote string `json:"substitute_note,omitempty"`
}

// Complete reports whether both required fields have been collected.
func (d LeaveDraft) Complete() bool {
	return d.Days > 0 && d.Reason != ""
}

// MissingFields lists the still-required fields in reply order.
func (d LeaveDraft) MissingFields() []string {
	var missing []string
	if d.Days <= 0 {
		missing = append(missing, "number of days")
	}
	if d.Reason == "" {
		missing = append(missing, "reason")
	}
	return missing
}

// Session is the per-sender conversation progress record, keyed by
// canonical phone number. It is ephemeral: destroyed on completion,
// cancellation, reset, or idle expiry.
type Session struct {
	Phone     string       `json:"phone"`
	State     SessionState `json:"state"`
	Person    Person       `json:"person"`
	Draft     LeaveDraft   `json:"draft"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
