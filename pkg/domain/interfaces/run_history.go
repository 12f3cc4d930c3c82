package interfaces

import (
	"context"

	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// RunHistoryRepository records completed report runs
type RunHistoryRepository interface {
	Save(ctx context.Context, record *model.RunRecord) error

	// Latest returns the most recently created record, or nil if there is none
	Latest(ctx context.Context) (*model.RunRecord, error)
}
