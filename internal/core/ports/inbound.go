package ports

import (
	"context"
	"time"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// SubmissionIntake is the inbound contract for starting a lifecycle from
// mapped form output.
type SubmissionIntake interface {
	Intake(ctx context.Context, mapped domain.MappedFormOutput) (*domain.Submission, error)
}

// SubmissionDriver advances one submission's lifecycle with an explicit event.
type SubmissionDriver interface {
	Apply(ctx context.Context, submissionID string, event domain.SubmissionEvent) (*domain.Submission, error)
}

// SubmissionReader is the inbound read model for submission state/history.
type SubmissionReader interface {
	GetByID(ctx context.Context, submissionID string) (*domain.Submission, error)
}

// CandidateRanker ranks the directory against a risk profile.
type CandidateRanker interface {
	Rank(ctx context.Context, profile domain.RiskProfile, topN int) ([]domain.ScoredCandidate, error)
}

// ContactResolver turns free-form availability notes into a concrete window.
// Deterministic in (now, notes); no hidden clock reads.
type ContactResolver interface {
	Resolve(now time.Time, notes string) domain.ContactWindow
}
