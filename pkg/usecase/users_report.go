package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/utils/errutil"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

// UsersReportUseCase runs the users access report: enumerate, enrich,
// aggregate, build, store and notify.
type UsersReportUseCase struct {
	repo        interfaces.Repository
	store       interfaces.ArtifactStore
	notifiers   []interfaces.Notifier
	policy      PolicyOptions
	retry       RetryPolicy
	concurrency int
	now         func() time.Time
}

// NewUsersReportUseCase creates a new UsersReportUseCase instance
func NewUsersReportUseCase(repo interfaces.Repository, store interfaces.ArtifactStore, notifiers []interfaces.Notifier) *UsersReportUseCase {
	return &UsersReportUseCase{
		repo:        repo,
		store:       store,
		notifiers:   notifiers,
		policy:      DefaultPolicyOptions(),
		retry:       DefaultRetryPolicy(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
}

// Run executes one report run. A closed environment gate returns a skipped
// result without error. Lookup and notification failures are logged and do
// not fail the run; configuration and storage failures do.
func (uc *UsersReportUseCase) Run(ctx context.Context, cfg RunConfig) (*model.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if uc.store == nil && !cfg.DryRun {
		return nil, goerr.Wrap(ErrInvalidConfig, "artifact store is not configured")
	}

	runID := model.NewRunID()
	logger := logging.From(ctx).With(RunIDKey, runID)
	ctx = logging.With(ctx, logger)

	if !cfg.IsPrimaryEnvironment() {
		logger.Info("Not running in primary environment, skipping report",
			"environment", cfg.Environment,
			"primary_environment", cfg.PrimaryEnvironment,
		)
		return &model.RunResult{RunID: runID, Skipped: true}, nil
	}

	today := cfg.Today
	if today.IsZero() {
		today = uc.now()
	}

	candidates, err := callWithRetry(ctx, uc.retry, func(ctx context.Context) ([]*model.UserCandidate, error) {
		return uc.repo.Directory().ListEligibleUsers(ctx)
	})
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err), "failed to list eligible users")
	}
	logger.Info("Eligible users listed", "count", len(candidates))

	enriched, err := uc.enrichAll(ctx, candidates, today)
	if err != nil {
		return nil, err
	}

	agg := Aggregate(enriched, cfg.staleAfterDays())
	if agg.Dropped > 0 {
		logger.Info("Users without first or last name excluded from report", "count", agg.Dropped)
	}

	report, err := BuildReport(agg.Rows, today, ReportOptions{RunID: runID, Dropped: agg.Dropped})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build report")
	}
	logger.Info("Report built",
		"file_name", report.FileName(),
		"summary", report.Summary,
	)

	result := &model.RunResult{RunID: runID, Report: report}
	if cfg.DryRun {
		logger.Info("Dry run, report is not stored or sent")
		return result, nil
	}

	artifactID, err := uc.store.Store(ctx, &model.Artifact{
		Name:        report.FileName(),
		MimeType:    model.MimeTypeCSV,
		Contents:    report.CSV,
		Destination: cfg.Destination,
	})
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err), "failed to store report artifact",
			goerr.V("file_name", report.FileName()),
			goerr.V("destination", cfg.Destination))
	}
	result.ArtifactID = artifactID
	logger.Info("Report stored", "artifact_id", artifactID)

	uc.recordRun(ctx, report, artifactID)
	result.NotifyFailures = uc.notify(ctx, cfg, report, artifactID)

	return result, nil
}

func (uc *UsersReportUseCase) recordRun(ctx context.Context, report *model.Report, artifactID model.ArtifactID) {
	record := &model.RunRecord{
		ID:            report.RunID,
		GeneratedDate: report.GeneratedDate,
		ArtifactID:    artifactID,
		Summary:       report.Summary,
		CreatedAt:     uc.now(),
	}
	if err := uc.repo.RunHistory().Save(ctx, record); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to save run history"), "run history not recorded")
	}
}

// notify sends the report through every notifier and returns how many failed
func (uc *UsersReportUseCase) notify(ctx context.Context, cfg RunConfig, report *model.Report, artifactID model.ArtifactID) int {
	if len(uc.notifiers) == 0 {
		return 0
	}

	body, err := RenderEmailBody(report, cfg.staleAfterDays(), cfg.JobName)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to render notification")
		return len(uc.notifiers)
	}

	n := &model.Notification{
		Author:     cfg.Author,
		Recipients: cfg.Recipients,
		ReplyTo:    cfg.replyTo(),
		Subject:    cfg.subject(),
		HTMLBody:   body,
		Attachments: []model.Attachment{
			{
				ArtifactID: artifactID,
				Name:       report.FileName(),
				MimeType:   model.MimeTypeCSV,
				Data:       report.CSV,
			},
		},
		Report: report,
	}

	failures := 0
	for _, notifier := range uc.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			failures++
			_ = errutil.Handle(ctx, goerr.Wrap(err, "notifier failed", goerr.V(NotifierKey, notifier.Name())), "failed to send notification")
			continue
		}
		logging.From(ctx).Info("Notification sent", NotifierKey, notifier.Name())
	}
	return failures
}
