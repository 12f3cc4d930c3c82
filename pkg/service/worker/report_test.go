package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/service/worker"
	"github.com/secmon-lab/usersreport/pkg/usecase"
)

// mockRunner is a mock implementation of worker.Runner for testing
type mockRunner struct {
	mu      sync.Mutex
	runFn   func(ctx context.Context, cfg usecase.RunConfig) (*model.RunResult, error)
	configs []usecase.RunConfig
}

func (m *mockRunner) Run(ctx context.Context, cfg usecase.RunConfig) (*model.RunResult, error) {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	fn := m.runFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, cfg)
	}
	return &model.RunResult{RunID: model.NewRunID()}, nil
}

func (m *mockRunner) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.configs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReportWorker_RunsImmediately(t *testing.T) {
	runner := &mockRunner{}
	cfg := usecase.RunConfig{Destination: "reports", Today: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)}

	w, err := worker.NewReportWorker(runner, cfg, 10*time.Minute)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()
	defer w.Stop()

	waitFor(t, func() bool { return runner.calls() == 1 })

	runner.mu.Lock()
	defer runner.mu.Unlock()
	gt.Value(t, runner.configs[0].Destination).Equal("reports")
	gt.Bool(t, runner.configs[0].Today.IsZero()).True()
}

func TestReportWorker_PeriodicRuns(t *testing.T) {
	runner := &mockRunner{}
	w, err := worker.NewReportWorker(runner, usecase.RunConfig{}, 20*time.Millisecond)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()
	defer w.Stop()

	waitFor(t, func() bool { return runner.calls() >= 3 })
}

func TestReportWorker_ContinuesAfterFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	runner := &mockRunner{
		runFn: func(ctx context.Context, cfg usecase.RunConfig) (*model.RunResult, error) {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			switch attempts {
			case 1:
				return nil, errors.New("directory unavailable")
			case 2:
				panic("unexpected nil pointer")
			}
			return &model.RunResult{RunID: model.NewRunID()}, nil
		},
	}

	w, err := worker.NewReportWorker(runner, usecase.RunConfig{}, 20*time.Millisecond)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()
	defer w.Stop()

	waitFor(t, func() bool { return runner.calls() >= 3 })
}

func TestReportWorker_StopsCleanly(t *testing.T) {
	runner := &mockRunner{}
	w, err := worker.NewReportWorker(runner, usecase.RunConfig{}, 100*time.Millisecond)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(context.Background())).Required()

	waitFor(t, func() bool { return runner.calls() == 1 })

	stopStart := time.Now()
	w.Stop()
	gt.Bool(t, time.Since(stopStart) < time.Second).True()

	// Stop is idempotent
	w.Stop()
}

func TestReportWorker_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &mockRunner{}
	w, err := worker.NewReportWorker(runner, usecase.RunConfig{}, time.Hour)
	gt.NoError(t, err).Required()
	gt.NoError(t, w.Start(ctx)).Required()

	waitFor(t, func() bool { return runner.calls() == 1 })
	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after cancel")
	}
}

func TestNewReportWorker_InvalidInterval(t *testing.T) {
	_, err := worker.NewReportWorker(&mockRunner{}, usecase.RunConfig{}, 0)
	gt.Value(t, err).NotNil()
}
