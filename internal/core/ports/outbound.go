package ports

import (
	"context"
	"time"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// UnderwriterDirectory is the read-only catalog the scoring engine queries.
// Storage mechanics stay behind this interface.
type UnderwriterDirectory interface {
	ListUnderwriters(ctx context.Context) ([]domain.UnderwriterRecord, error)
}

// SubmissionRepository persists submission state and history. The core defines
// the shape; where it lives is an adapter concern.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	Save(ctx context.Context, sub *domain.Submission) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Submission, error)
}

// DispatchPublisher announces that a submission entered the scheduled state.
type DispatchPublisher interface {
	PublishDispatchScheduled(ctx context.Context, submissionID string) error
}
