package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	business_name TEXT NOT NULL,
	profile JSONB NOT NULL DEFAULT '{}'::jsonb,
	social_context_notes TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	history JSONB NOT NULL DEFAULT '[]'::jsonb,
	recommended_underwriter_id TEXT NOT NULL DEFAULT '',
	recommended_underwriter_name TEXT NOT NULL DEFAULT '',
	scheduled_for TIMESTAMPTZ,
	schedule_reason TEXT NOT NULL DEFAULT '',
	broker_tasks_pending INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_state ON submissions(state);
CREATE INDEX IF NOT EXISTS idx_submissions_scheduled_for ON submissions(scheduled_for) WHERE scheduled_for IS NOT NULL;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	profileJSON, historyJSON, err := marshalSubmissionJSON(sub)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO submissions (
	id, business_name, profile, social_context_notes, state, history,
	recommended_underwriter_id, recommended_underwriter_name, scheduled_for, schedule_reason,
	broker_tasks_pending, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		sub.ID, sub.BusinessName, profileJSON, sub.SocialContextNotes, string(sub.State), historyJSON,
		sub.RecommendedID, sub.RecommendedName, sub.ScheduledFor, sub.ScheduleReason,
		sub.BrokerTasksPending, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, business_name, profile, social_context_notes, state, history,
	recommended_underwriter_id, recommended_underwriter_name, scheduled_for, schedule_reason,
	broker_tasks_pending, created_at, updated_at
FROM submissions
WHERE id = $1
`, id)

	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", err)
		}
		return nil, err
	}
	return sub, nil
}

func (r *SubmissionRepository) Save(ctx context.Context, sub *domain.Submission) error {
	profileJSON, historyJSON, err := marshalSubmissionJSON(sub)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET business_name = $2, profile = $3, social_context_notes = $4, state = $5, history = $6,
	recommended_underwriter_id = $7, recommended_underwriter_name = $8, scheduled_for = $9,
	schedule_reason = $10, broker_tasks_pending = $11, updated_at = $12
WHERE id = $1
`,
		sub.ID, sub.BusinessName, profileJSON, sub.SocialContextNotes, string(sub.State), historyJSON,
		sub.RecommendedID, sub.RecommendedName, sub.ScheduledFor, sub.ScheduleReason,
		sub.BrokerTasksPending, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, "update submission", sql.ErrNoRows)
	}
	return nil
}

// ListDue returns scheduled submissions whose contact window has opened. The
// worker uses it at startup to recover dispatches whose queue message was
// lost.
func (r *SubmissionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, business_name, profile, social_context_notes, state, history,
	recommended_underwriter_id, recommended_underwriter_name, scheduled_for, schedule_reason,
	broker_tasks_pending, created_at, updated_at
FROM submissions
WHERE state = $1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2
ORDER BY scheduled_for ASC
LIMIT $3
`, string(domain.StateScheduled), now, limit)
	if err != nil {
		return nil, fmt.Errorf("query due submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due submissions: %w", err)
	}
	return out, nil
}

func marshalSubmissionJSON(sub *domain.Submission) ([]byte, []byte, error) {
	profileJSON, err := json.Marshal(sub.Profile)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal profile: %w", err)
	}
	historyJSON, err := json.Marshal(sub.History)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	return profileJSON, historyJSON, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var sub domain.Submission
	var profileRaw, historyRaw []byte
	var state string
	var scheduledFor sql.NullTime

	err := row.Scan(
		&sub.ID, &sub.BusinessName, &profileRaw, &sub.SocialContextNotes, &state, &historyRaw,
		&sub.RecommendedID, &sub.RecommendedName, &scheduledFor, &sub.ScheduleReason,
		&sub.BrokerTasksPending, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	if err := json.Unmarshal(profileRaw, &sub.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(historyRaw, &sub.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	sub.State = domain.SubmissionState(state)
	if scheduledFor.Valid {
		at := scheduledFor.Time
		sub.ScheduledFor = &at
	}
	return &sub, nil
}
