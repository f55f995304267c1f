package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// UnderwriterRepository serves the roster from Postgres for deployments that
// manage underwriters outside the binary.
type UnderwriterRepository struct {
	db *sql.DB
}

func NewUnderwriterRepository(db *sql.DB) *UnderwriterRepository {
	return &UnderwriterRepository{db: db}
}

func (r *UnderwriterRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082502)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS underwriters (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	region TEXT NOT NULL DEFAULT '',
	specialties JSONB NOT NULL DEFAULT '{}'::jsonb,
	appetite JSONB NOT NULL DEFAULT '[]'::jsonb,
	aversions JSONB NOT NULL DEFAULT '[]'::jsonb,
	avg_turnaround_days DOUBLE PRECISION NOT NULL DEFAULT 0,
	acceptance_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_workload INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_underwriters_region ON underwriters(region);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *UnderwriterRepository) ListUnderwriters(ctx context.Context) ([]domain.UnderwriterRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, phone, region, specialties, appetite, aversions,
	avg_turnaround_days, acceptance_rate, current_workload, notes
FROM underwriters
ORDER BY id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query underwriters: %w", err)
	}
	defer rows.Close()

	var out []domain.UnderwriterRecord
	for rows.Next() {
		var uw domain.UnderwriterRecord
		var region string
		var specialtiesRaw, appetiteRaw, aversionsRaw []byte

		err := rows.Scan(
			&uw.ID, &uw.Name, &uw.Email, &uw.Phone, &region, &specialtiesRaw, &appetiteRaw, &aversionsRaw,
			&uw.AvgTurnaroundDays, &uw.AcceptanceRate, &uw.CurrentWorkload, &uw.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan underwriter: %w", err)
		}
		if err := json.Unmarshal(specialtiesRaw, &uw.Specialties); err != nil {
			return nil, fmt.Errorf("unmarshal specialties for %s: %w", uw.ID, err)
		}
		if err := json.Unmarshal(appetiteRaw, &uw.Appetite); err != nil {
			return nil, fmt.Errorf("unmarshal appetite for %s: %w", uw.ID, err)
		}
		if err := json.Unmarshal(aversionsRaw, &uw.Aversions); err != nil {
			return nil, fmt.Errorf("unmarshal aversions for %s: %w", uw.ID, err)
		}
		uw.Region = domain.Region(region)
		out = append(out, uw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate underwriters: %w", err)
	}
	return out, nil
}

// Upsert keeps the stored roster current; used by seeding and roster imports.
func (r *UnderwriterRepository) Upsert(ctx context.Context, uw domain.UnderwriterRecord) error {
	specialtiesJSON, err := json.Marshal(uw.Specialties)
	if err != nil {
		return fmt.Errorf("marshal specialties: %w", err)
	}
	appetiteJSON, err := json.Marshal(uw.Appetite)
	if err != nil {
		return fmt.Errorf("marshal appetite: %w", err)
	}
	aversionsJSON, err := json.Marshal(uw.Aversions)
	if err != nil {
		return fmt.Errorf("marshal aversions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO underwriters (
	id, name, email, phone, region, specialties, appetite, aversions,
	avg_turnaround_days, acceptance_rate, current_workload, notes, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	region = EXCLUDED.region,
	specialties = EXCLUDED.specialties,
	appetite = EXCLUDED.appetite,
	aversions = EXCLUDED.aversions,
	avg_turnaround_days = EXCLUDED.avg_turnaround_days,
	acceptance_rate = EXCLUDED.acceptance_rate,
	current_workload = EXCLUDED.current_workload,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at
`,
		uw.ID, uw.Name, uw.Email, uw.Phone, string(uw.Region), specialtiesJSON, appetiteJSON, aversionsJSON,
		uw.AvgTurnaroundDays, uw.AcceptanceRate, uw.CurrentWorkload, uw.Notes, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert underwriter %s: %w", uw.ID, err)
	}
	return nil
}
