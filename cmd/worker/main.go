package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coastalins/broker-engine/internal/bootstrap"
	"github.com/coastalins/broker-engine/internal/config"
	"github.com/coastalins/broker-engine/internal/core/domain"
	"github.com/coastalins/broker-engine/internal/observability/logging"
	"github.com/coastalins/broker-engine/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	go serveMetrics(ctx, cfg.WorkerMetricsPort, workerMetrics)

	// Scheduled submissions whose queue message was lost while no worker was
	// running are recovered from the database before subscribing.
	sweepDue(ctx, app, workerMetrics, cfg.WorkerDueSweep)

	slog.Info("worker_subscribed", "subject", cfg.NATSDispatchSubject)
	err = app.Queue.SubscribeDispatchScheduled(ctx, func(handlerCtx context.Context, submissionID string) error {
		return dispatch(handlerCtx, app, workerMetrics, submissionID)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

// dispatch waits out the submission's contact window and confirms the send.
func dispatch(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, submissionID string) error {
	m.StartDispatch()
	start := time.Now()

	err := dispatchWhenDue(ctx, app, m, submissionID)
	m.FinishDispatch(serviceName, time.Since(start), err)
	return err
}

func dispatchWhenDue(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, submissionID string) error {
	sub, err := app.Repo.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.State != domain.StateScheduled {
		// Already dispatched by another worker, or the message raced a
		// transition. Nothing to do.
		slog.Info("dispatch_skipped", "submission_id", submissionID, "state", string(sub.State))
		return nil
	}

	if sub.ScheduledFor != nil {
		if wait := time.Until(*sub.ScheduledFor); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		m.ObserveScheduleLag(serviceName, time.Since(*sub.ScheduledFor))
	}

	if _, err := app.Lifecycle.Apply(ctx, submissionID, domain.EventDispatchConfirmed); err != nil {
		if domain.IsKind(err, domain.ErrInvalidTransition) {
			// Lost the race to another worker; the submission moved on.
			slog.Info("dispatch_already_confirmed", "submission_id", submissionID)
			return nil
		}
		return err
	}
	slog.Info("dispatch_confirmed", "submission_id", submissionID)
	return nil
}

func sweepDue(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, limit int) {
	due, err := app.Repo.ListDue(ctx, time.Now().UTC(), limit)
	if err != nil {
		slog.Warn("due_sweep_failed", "error", err)
		return
	}
	recovered := 0
	for _, sub := range due {
		if err := dispatch(ctx, app, m, sub.ID); err != nil {
			slog.Warn("due_sweep_dispatch_failed", "submission_id", sub.ID, "error", err)
			continue
		}
		recovered++
	}
	m.RecordDueSweep(serviceName, recovered)
	if recovered > 0 {
		slog.Info("due_sweep_recovered", "count", recovered)
	}
}

func serveMetrics(ctx context.Context, port string, m *metrics.WorkerMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_metrics_listening", "port", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("worker_metrics_server_failed", "error", err)
	}
}
