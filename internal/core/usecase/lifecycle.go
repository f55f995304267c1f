package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coastalins/broker-engine/internal/core/domain"
	"github.com/coastalins/broker-engine/internal/core/ports"
)

// Lifecycle owns submission state. Every transition needs its explicit driving
// event; nothing auto-advances. Transitions on one submission are serialized.
type Lifecycle struct {
	repo      ports.SubmissionRepository
	ranker    ports.CandidateRanker
	resolver  ports.ContactResolver
	publisher ports.DispatchPublisher
	topN      int
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLifecycle(
	repo ports.SubmissionRepository,
	ranker ports.CandidateRanker,
	resolver ports.ContactResolver,
	publisher ports.DispatchPublisher,
	topN int,
) *Lifecycle {
	if topN <= 0 {
		topN = 3
	}
	return &Lifecycle{
		repo:      repo,
		ranker:    ranker,
		resolver:  resolver,
		publisher: publisher,
		topN:      topN,
		now:       func() time.Time { return time.Now().UTC() },
		locks:     make(map[string]*sync.Mutex),
	}
}

// WithClock swaps the clock for tests.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	l.now = now
	return l
}

// Intake starts a submission at StateReceived and derives its risk profile
// from the mapped form output.
func (l *Lifecycle) Intake(ctx context.Context, mapped domain.MappedFormOutput) (*domain.Submission, error) {
	profile := BuildRiskProfile(mapped)
	sub := domain.NewSubmission(
		uuid.NewString(),
		mapped.BusinessName,
		profile,
		mapped.SocialContextNotes,
		len(mapped.BrokerTasks),
		l.now(),
	)
	if err := l.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

func (l *Lifecycle) GetByID(ctx context.Context, submissionID string) (*domain.Submission, error) {
	return l.repo.GetByID(ctx, submissionID)
}

// Apply drives exactly one transition. A concurrent attempt that loses the
// race observes the post-transition state and fails with ErrInvalidTransition
// instead of racing onto an inconsistent history.
func (l *Lifecycle) Apply(ctx context.Context, submissionID string, event domain.SubmissionEvent) (*domain.Submission, error) {
	lock := l.lockFor(submissionID)
	lock.Lock()
	defer lock.Unlock()

	sub, err := l.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextState(sub.State, event)
	if err != nil {
		return nil, err
	}

	now := l.now()
	switch event {
	case domain.EventRecommendationMade:
		if err := l.attachRecommendation(ctx, sub); err != nil {
			return nil, err
		}
	case domain.EventScheduleResolved:
		window := l.resolver.Resolve(now, sub.SocialContextNotes)
		sub.ScheduledFor = &window.EarliestContact
		sub.ScheduleReason = window.Reason
	}

	sub.State = next
	sub.History = append(sub.History, domain.StateRecord{State: next, EnteredAt: now})
	sub.UpdatedAt = now

	if err := l.repo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save transition: %w", err)
	}

	if next == domain.StateAcknowledged {
		// Terminal state: no further transitions can arrive, so the
		// per-submission lock entry is dead weight.
		l.releaseLock(submissionID)
	}

	if next == domain.StateScheduled && l.publisher != nil {
		// The transition is already durable; a publish failure only delays
		// dispatch until the worker's due sweep picks it up.
		if err := l.publisher.PublishDispatchScheduled(ctx, sub.ID); err != nil {
			slog.Warn("dispatch_publish_failed", "submission_id", sub.ID, "error", err)
		}
	}

	return sub, nil
}

func (l *Lifecycle) attachRecommendation(ctx context.Context, sub *domain.Submission) error {
	ranked, err := l.ranker.Rank(ctx, sub.Profile, l.topN)
	if err != nil {
		return fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) == 0 {
		// No candidates is not an error; the broker decides what to do.
		return nil
	}
	sub.RecommendedID = ranked[0].Underwriter.ID
	sub.RecommendedName = ranked[0].Underwriter.Name
	return nil
}

func (l *Lifecycle) lockFor(submissionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[submissionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[submissionID] = lock
	}
	return lock
}

// releaseLock drops the map entry. A goroutine already blocked on the old
// mutex still runs; it re-reads the submission and fails the transition check.
func (l *Lifecycle) releaseLock(submissionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, submissionID)
}
