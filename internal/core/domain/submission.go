package domain

import (
	"fmt"
	"time"
)

// SubmissionState tracks a submission through the pipeline.
type SubmissionState string

const (
	StateReceived     SubmissionState = "received"
	StateExtracted    SubmissionState = "extracted"
	StateMapped       SubmissionState = "mapped"
	StateRouted       SubmissionState = "routed"
	StateReadyToSend  SubmissionState = "ready_to_send"
	StateScheduled    SubmissionState = "scheduled"
	StateSent         SubmissionState = "sent"
	StateAcknowledged SubmissionState = "acknowledged"
)

// SubmissionEvent is the external signal that drives exactly one forward
// transition. The engine never advances without one.
type SubmissionEvent string

const (
	EventExtractionComplete SubmissionEvent = "extraction_complete"
	EventMappingComplete    SubmissionEvent = "mapping_complete"
	EventRecommendationMade SubmissionEvent = "recommendation_made"
	EventBrokerApproved     SubmissionEvent = "broker_approved"
	EventScheduleResolved   SubmissionEvent = "schedule_resolved"
	EventDispatchConfirmed  SubmissionEvent = "dispatch_confirmed"
	EventAcknowledged       SubmissionEvent = "underwriter_acknowledged"
)

// forward is the strictly linear lifecycle: each state accepts exactly one
// event and names its unique successor. StateAcknowledged is terminal.
var forward = map[SubmissionState]struct {
	event SubmissionEvent
	next  SubmissionState
}{
	StateReceived:    {EventExtractionComplete, StateExtracted},
	StateExtracted:   {EventMappingComplete, StateMapped},
	StateMapped:      {EventRecommendationMade, StateRouted},
	StateRouted:      {EventBrokerApproved, StateReadyToSend},
	StateReadyToSend: {EventScheduleResolved, StateScheduled},
	StateScheduled:   {EventDispatchConfirmed, StateSent},
	StateSent:        {EventAcknowledged, StateAcknowledged},
}

// NextState is a pure function of (current, event). Anything other than the
// single documented event for the current state is ErrInvalidTransition.
func NextState(current SubmissionState, event SubmissionEvent) (SubmissionState, error) {
	step, ok := forward[current]
	if !ok {
		return current, fmt.Errorf("%w: state %q is terminal, rejected event %q", ErrInvalidTransition, current, event)
	}
	if event != step.event {
		return current, fmt.Errorf("%w: state %q does not accept event %q (expects %q)", ErrInvalidTransition, current, event, step.event)
	}
	return step.next, nil
}

// StateRecord is one append-only history entry.
type StateRecord struct {
	State     SubmissionState `json:"state"`
	EnteredAt time.Time       `json:"entered_at"`
}

// Submission owns one lifecycle. State and history are mutated only by the
// lifecycle manager, which serializes transitions per submission.
type Submission struct {
	ID                 string          `json:"id"`
	BusinessName       string          `json:"business_name"`
	Profile            RiskProfile     `json:"profile"`
	SocialContextNotes string          `json:"social_context_notes,omitempty"`
	State              SubmissionState `json:"state"`
	History            []StateRecord   `json:"history"`
	RecommendedID      string          `json:"recommended_underwriter_id,omitempty"`
	RecommendedName    string          `json:"recommended_underwriter_name,omitempty"`
	ScheduledFor       *time.Time      `json:"scheduled_for,omitempty"`
	ScheduleReason     string          `json:"schedule_reason,omitempty"`
	BrokerTasksPending int             `json:"broker_tasks_pending"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewSubmission starts a lifecycle at StateReceived with its initial history
// entry, so len(history) == transitions taken + 1 from the very beginning.
func NewSubmission(id, businessName string, profile RiskProfile, notes string, tasksPending int, now time.Time) *Submission {
	return &Submission{
		ID:                 id,
		BusinessName:       businessName,
		Profile:            profile,
		SocialContextNotes: notes,
		State:              StateReceived,
		History:            []StateRecord{{State: StateReceived, EnteredAt: now}},
		BrokerTasksPending: tasksPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
