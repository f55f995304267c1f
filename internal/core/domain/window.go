package domain

import "time"

// ContactWindow is the resolver's verdict: the earliest instant an outreach
// action may execute. Rule names the constraint rule that fired and Reason is
// the human-readable trace carrying the literal matched cue, kept for the same
// auditability the scoring justification list gives.
type ContactWindow struct {
	EarliestContact time.Time `json:"earliest_contact"`
	Rule            string    `json:"rule"`
	Reason          string    `json:"reason"`
}
