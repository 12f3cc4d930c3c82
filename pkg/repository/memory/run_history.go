package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

type runHistoryRepository struct {
	mu      sync.RWMutex
	records []*model.RunRecord
}

var _ interfaces.RunHistoryRepository = &runHistoryRepository{}

func newRunHistoryRepository() *runHistoryRepository {
	return &runHistoryRepository{}
}

// Save appends a run record
func (r *runHistoryRepository) Save(ctx context.Context, record *model.RunRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("run record ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	copied := *record
	r.records = append(r.records, &copied)
	return nil
}

// Latest returns the most recently created record, or nil when none exists
func (r *runHistoryRepository) Latest(ctx context.Context) (*model.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.RunRecord
	for _, record := range r.records {
		if latest == nil || !record.CreatedAt.Before(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, nil
	}

	copied := *latest
	return &copied, nil
}
