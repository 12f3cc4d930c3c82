package usecase

import (
	"time"

	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
)

type UseCases struct {
	repo        interfaces.Repository
	store       interfaces.ArtifactStore
	notifiers   []interfaces.Notifier
	policy      PolicyOptions
	retry       RetryPolicy
	concurrency int
	now         func() time.Time

	UsersReport *UsersReportUseCase
}

type Option func(*UseCases)

func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return func(uc *UseCases) {
		uc.store = store
	}
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifiers = append(uc.notifiers, n)
	}
}

func WithPolicyOptions(opts PolicyOptions) Option {
	return func(uc *UseCases) {
		uc.policy = opts
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(uc *UseCases) {
		uc.retry = p
	}
}

func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

// WithClock replaces the clock used for the report date and history timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		policy:      DefaultPolicyOptions(),
		retry:       DefaultRetryPolicy(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.UsersReport = NewUsersReportUseCase(repo, uc.store, uc.notifiers)
	uc.UsersReport.policy = uc.policy
	uc.UsersReport.retry = uc.retry
	if uc.concurrency > 0 {
		uc.UsersReport.concurrency = uc.concurrency
	}
	uc.UsersReport.now = uc.now

	return uc
}
