package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/coastalins/broker-engine/internal/config"
	"github.com/coastalins/broker-engine/internal/core/ports"
	"github.com/coastalins/broker-engine/internal/core/usecase"
	"github.com/coastalins/broker-engine/internal/infrastructure/directory/static"
	"github.com/coastalins/broker-engine/internal/infrastructure/directory/xlsx"
	natsqueue "github.com/coastalins/broker-engine/internal/infrastructure/queue/nats"
	"github.com/coastalins/broker-engine/internal/infrastructure/repository/postgres"
	"github.com/coastalins/broker-engine/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue     *natsqueue.Queue
	Repo      ports.SubmissionRepository
	Directory ports.UnderwriterDirectory
	Scorer    *usecase.Scorer
	Resolver  *usecase.Resolver
	Lifecycle *usecase.Lifecycle

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSubmissionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure submissions schema: %w", err)
	}

	directory, err := buildDirectory(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSDispatchSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init dispatch queue: %w", err)
	}

	scorer := usecase.NewScorer(scoringConfigFromTuning(tuning.Scoring), directory)
	resolver := usecase.NewResolver(scheduleConfigFromTuning(tuning.Schedule))
	lifecycle := usecase.NewLifecycle(repo, scorer, resolver, queue, cfg.RoutingTopN)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Repo:      repo,
		Directory: directory,
		Scorer:    scorer,
		Resolver:  resolver,
		Lifecycle: lifecycle,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func buildDirectory(ctx context.Context, cfg config.Config, db *sql.DB) (ports.UnderwriterDirectory, error) {
	switch cfg.DirectorySource {
	case "", "static":
		return static.NewDirectory(), nil
	case "xlsx":
		directory, err := xlsx.Load(cfg.DirectoryXLSXPath)
		if err != nil {
			return nil, fmt.Errorf("load xlsx roster: %w", err)
		}
		return directory, nil
	case "postgres":
		repo := postgres.NewUnderwriterRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure underwriters schema: %w", err)
		}
		if err := seedIfEmpty(ctx, repo); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown directory source %q", cfg.DirectorySource)
	}
}

// seedIfEmpty loads the built-in roster into a fresh database so a new
// deployment routes sensibly before operations imports the real roster.
func seedIfEmpty(ctx context.Context, repo *postgres.UnderwriterRepository) error {
	existing, err := repo.ListUnderwriters(ctx)
	if err != nil {
		return fmt.Errorf("check roster: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	seed, err := static.NewDirectory().ListUnderwriters(ctx)
	if err != nil {
		return fmt.Errorf("load seed roster: %w", err)
	}
	for _, uw := range seed {
		if err := repo.Upsert(ctx, uw); err != nil {
			return fmt.Errorf("seed roster: %w", err)
		}
	}
	slog.Info("underwriter_roster_seeded", "count", len(seed))
	return nil
}

func scoringConfigFromTuning(t config.ScoringTuning) usecase.ScoringConfig {
	out := usecase.DefaultScoringConfig()
	if t.RegionMatchPoints != nil {
		out.RegionMatchPoints = *t.RegionMatchPoints
	}
	if t.SpecialtyPoints != nil {
		out.SpecialtyPoints = *t.SpecialtyPoints
	}
	if t.SpecialtyGroupFactor != nil {
		out.SpecialtyGroupFactor = *t.SpecialtyGroupFactor
	}
	if t.AppetitePoints != nil {
		out.AppetitePoints = *t.AppetitePoints
	}
	if t.AversionPenalty != nil {
		out.AversionPenalty = *t.AversionPenalty
	}
	if t.TurnaroundMaxPoints != nil {
		out.TurnaroundMaxPoints = *t.TurnaroundMaxPoints
	}
	if t.TurnaroundFloorDays != nil {
		out.TurnaroundFloorDays = *t.TurnaroundFloorDays
	}
	if t.TurnaroundCeilingDays != nil {
		out.TurnaroundCeilingDays = *t.TurnaroundCeilingDays
	}
	if t.AcceptanceMaxPoints != nil {
		out.AcceptanceMaxPoints = *t.AcceptanceMaxPoints
	}
	if t.WorkloadBonusMax != nil {
		out.WorkloadBonusMax = *t.WorkloadBonusMax
	}
	if t.WorkloadPenaltyMax != nil {
		out.WorkloadPenaltyMax = *t.WorkloadPenaltyMax
	}
	if t.WorkloadLowWatermark != nil {
		out.WorkloadLowWatermark = *t.WorkloadLowWatermark
	}
	if t.WorkloadHighWatermark != nil {
		out.WorkloadHighWatermark = *t.WorkloadHighWatermark
	}
	if t.WorkloadPenaltyCap != nil {
		out.WorkloadPenaltyCap = *t.WorkloadPenaltyCap
	}
	return out
}

func scheduleConfigFromTuning(t config.ScheduleTuning) usecase.ScheduleConfig {
	out := usecase.DefaultScheduleConfig()
	if t.BusinessStartHour != nil {
		out.BusinessStartHour = *t.BusinessStartHour
	}
	if t.AfternoonHour != nil {
		out.AfternoonHour = *t.AfternoonHour
	}
	return out
}
