package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/usecase"
	"github.com/secmon-lab/usersreport/pkg/utils/async"
	"github.com/secmon-lab/usersreport/pkg/utils/errutil"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

// Runner executes a single report run
type Runner interface {
	Run(ctx context.Context, cfg usecase.RunConfig) (*model.RunResult, error)
}

// ReportWorker runs the users report immediately and then on every interval
//
// Architecture assumptions:
// - Single job instance (no distributed locking)
// - The environment gate in RunConfig keeps non-primary deployments quiet
type ReportWorker struct {
	runner   Runner
	cfg      usecase.RunConfig
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewReportWorker creates a new worker for scheduled report runs
func NewReportWorker(runner Runner, cfg usecase.RunConfig, interval time.Duration) (*ReportWorker, error) {
	if interval <= 0 {
		return nil, goerr.New("interval must be positive", goerr.V("interval", interval))
	}

	// each cycle reports for its own date
	cfg.Today = time.Time{}

	return &ReportWorker{
		runner:   runner,
		cfg:      cfg,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins the background loop. The first run starts immediately.
func (w *ReportWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("Report worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReportWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Report worker stopping")
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Report worker stopped")
}

// Done is closed when the loop has exited
func (w *ReportWorker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *ReportWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)

		case <-w.stopCh:
			logging.From(ctx).Info("Report worker received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Report worker context cancelled")
			return
		}
	}
}

// runOnce performs one report run. Failures are reported and the loop continues.
func (w *ReportWorker) runOnce(ctx context.Context) {
	startTime := time.Now()

	err := async.Run(ctx, func(ctx context.Context) error {
		result, err := w.runner.Run(ctx, w.cfg)
		if err != nil {
			return err
		}

		if result.Skipped {
			logging.From(ctx).Info("Scheduled report skipped", "run_id", result.RunID)
			return nil
		}
		logging.From(ctx).Info("Scheduled report completed",
			"run_id", result.RunID,
			"artifact_id", result.ArtifactID,
			"notify_failures", result.NotifyFailures,
			"duration", time.Since(startTime).String())
		return nil
	})
	if err != nil {
		_ = errutil.Handle(ctx, err, "scheduled report failed (will retry next interval)")
	}
}
