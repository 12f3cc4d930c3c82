package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/utils/async"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of users enriched in parallel
const DefaultConcurrency = 4

// enrichAll runs the per-user lookups through a bounded pool. Each task only
// writes its own slot, so the result keeps the enumeration order. A lookup
// failure degrades the user instead of failing the batch; only cancellation
// of ctx aborts.
func (uc *UsersReportUseCase) enrichAll(ctx context.Context, candidates []*model.UserCandidate, today time.Time) ([]*EnrichedUser, error) {
	results := make([]*EnrichedUser, len(candidates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(uc.concurrency, 1))

	for i, candidate := range candidates {
		if egCtx.Err() != nil {
			break
		}

		eg.Go(func() error {
			err := async.Run(egCtx, func(ctx context.Context) error {
				results[i] = uc.enrichUser(ctx, candidate, today)
				return nil
			})
			if err != nil {
				// panic inside one user's evaluation
				results[i] = &EnrichedUser{
					Candidate: candidate,
					Staleness: ClassifyStaleness(model.Absent(), model.Absent(), today),
					Policy:    EvaluatePolicy(nil, uc.policy),
					Degraded:  true,
				}
			}
			return egCtx.Err()
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "enrichment aborted", goerr.V("users", len(candidates)))
	}
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "enrichment aborted", goerr.V("users", len(candidates)))
	}

	return results, nil
}

func (uc *UsersReportUseCase) enrichUser(ctx context.Context, candidate *model.UserCandidate, today time.Time) *EnrichedUser {
	logger := logging.From(ctx).With(UserIDKey, candidate.ID)
	dir := uc.repo.Directory()
	degraded := false

	provisioning, err := callWithRetry(ctx, uc.retry, func(ctx context.Context) (model.TimestampSignal, error) {
		return dir.MostRecentAccessGrant(ctx, candidate.ID)
	})
	if err != nil {
		logger.Warn("Provisioning lookup failed, treating as absent", "error", err)
		provisioning = model.Absent()
		degraded = true
	}

	login, err := callWithRetry(ctx, uc.retry, func(ctx context.Context) (model.TimestampSignal, error) {
		return dir.MostRecentLogin(ctx, candidate.ID)
	})
	if err != nil {
		logger.Warn("Login lookup failed, treating as absent", "error", err)
		login = model.Absent()
		degraded = true
	}

	entitlements, err := callWithRetry(ctx, uc.retry, func(ctx context.Context) (model.EntitlementSet, error) {
		return dir.EntitlementsFor(ctx, candidate.ID)
	})
	if err != nil {
		logger.Warn("Entitlement lookup failed, treating as no roles", "error", err)
		entitlements = nil
		degraded = true
	}

	staleness := ClassifyStaleness(provisioning, login, today)
	logger.Debug("User enriched",
		"source", staleness.Source,
		"days_inactive", staleness.DaysInactive,
		"roles", len(entitlements),
	)

	return &EnrichedUser{
		Candidate: candidate,
		Staleness: staleness,
		Policy:    EvaluatePolicy(entitlements, uc.policy),
		Degraded:  degraded,
	}
}
