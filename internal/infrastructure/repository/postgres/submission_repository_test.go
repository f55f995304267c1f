package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

func newSubmissionRepoWithMock(t *testing.T) (*SubmissionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SubmissionRepository{db: db}, mock, func() { _ = db.Close() }
}

var submissionColumns = []string{
	"id", "business_name", "profile", "social_context_notes", "state", "history",
	"recommended_underwriter_id", "recommended_underwriter_name", "scheduled_for", "schedule_reason",
	"broker_tasks_pending", "created_at", "updated_at",
}

func TestSubmissionGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newSubmissionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, business_name, profile").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubmissionGetByIDHydratesJSONColumns(t *testing.T) {
	repo, mock, done := newSubmissionRepoWithMock(t)
	defer done()

	now := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	scheduled := now.Add(4 * time.Hour)
	rows := sqlmock.NewRows(submissionColumns).AddRow(
		"sub-1", "The Dusty Anchor",
		[]byte(`{"industry_code":"722410","region":"Southeast","hazards":["alcohol_service"],"requires_liquor_liability":true,"business_type_tags":["bar","liquor"]}`),
		"unavailable until tuesday", string(domain.StateScheduled),
		[]byte(`[{"state":"received","entered_at":"2026-08-25T09:00:00Z"},{"state":"extracted","entered_at":"2026-08-25T09:05:00Z"}]`),
		"UW-001", "Sarah Mitchell", scheduled, `rule "explicit availability" matched cue "until tuesday"`,
		2, now, now,
	)
	mock.ExpectQuery("SELECT id, business_name, profile").
		WithArgs("sub-1").
		WillReturnRows(rows)

	sub, err := repo.GetByID(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sub.Profile.Region != domain.RegionSoutheast || !sub.Profile.RequiresLiquorLiability {
		t.Fatalf("profile not hydrated: %+v", sub.Profile)
	}
	if len(sub.History) != 2 || sub.History[1].State != domain.StateExtracted {
		t.Fatalf("history not hydrated: %+v", sub.History)
	}
	if sub.ScheduledFor == nil || !sub.ScheduledFor.Equal(scheduled) {
		t.Fatalf("scheduled_for = %v, want %v", sub.ScheduledFor, scheduled)
	}
	if sub.BrokerTasksPending != 2 {
		t.Fatalf("broker tasks pending = %d", sub.BrokerTasksPending)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubmissionCreateInsertsAllColumns(t *testing.T) {
	repo, mock, done := newSubmissionRepoWithMock(t)
	defer done()

	now := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	sub := domain.NewSubmission("sub-1", "Acme", domain.RiskProfile{IndustryCode: "722511"}, "", 0, now)

	mock.ExpectExec("INSERT INTO submissions").
		WithArgs(
			"sub-1", "Acme", sqlmock.AnyArg(), "", string(domain.StateReceived), sqlmock.AnyArg(),
			"", "", nil, "", 0, now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubmissionSaveReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newSubmissionRepoWithMock(t)
	defer done()

	now := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	sub := domain.NewSubmission("missing", "Acme", domain.RiskProfile{}, "", 0, now)

	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), sub)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubmissionListDueFiltersOnStateAndWindow(t *testing.T) {
	repo, mock, done := newSubmissionRepoWithMock(t)
	defer done()

	now := time.Date(2026, time.August, 25, 13, 30, 0, 0, time.UTC)
	due := now.Add(-30 * time.Minute)
	rows := sqlmock.NewRows(submissionColumns).AddRow(
		"sub-due", "Acme", []byte(`{}`), "", string(domain.StateScheduled),
		[]byte(`[{"state":"received","entered_at":"2026-08-25T09:00:00Z"}]`),
		"UW-001", "Sarah Mitchell", due, "", 0, due, due,
	)
	mock.ExpectQuery("SELECT id, business_name, profile").
		WithArgs(string(domain.StateScheduled), now, 50).
		WillReturnRows(rows)

	out, err := repo.ListDue(context.Background(), now, 50)
	if err != nil {
		t.Fatalf("ListDue() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "sub-due" {
		t.Fatalf("due list = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
