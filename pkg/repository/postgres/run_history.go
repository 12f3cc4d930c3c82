package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

type runHistoryRepository struct {
	db     *sql.DB
	schema string
}

var _ interfaces.RunHistoryRepository = &runHistoryRepository{}

// Save inserts a run record; saving the same run ID again replaces it
func (r *runHistoryRepository) Save(ctx context.Context, record *model.RunRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("run record ID is required")
	}

	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal summary", goerr.V("run_id", record.ID))
	}

	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.report_runs (id, run_id, generated_date, artifact_id, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			generated_date = EXCLUDED.generated_date,
			artifact_id = EXCLUDED.artifact_id,
			summary = EXCLUDED.summary,
			created_at = EXCLUDED.created_at`, r.schema),
		uuid.New(),
		record.ID.String(),
		record.GeneratedDate,
		record.ArtifactID.String(),
		summary,
		record.CreatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save run record", goerr.V("run_id", record.ID))
	}
	return nil
}

// Latest returns the most recently created record, or nil when none exists
func (r *runHistoryRepository) Latest(ctx context.Context) (*model.RunRecord, error) {
	var (
		record     model.RunRecord
		runID      string
		artifactID string
		summary    []byte
	)

	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT run_id, generated_date, artifact_id, summary, created_at
		FROM %s.report_runs
		ORDER BY created_at DESC
		LIMIT 1`, r.schema),
	).Scan(&runID, &record.GeneratedDate, &artifactID, &summary, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query run history")
	}

	if err := json.Unmarshal(summary, &record.Summary); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal summary", goerr.V("run_id", runID))
	}
	record.ID = model.RunID(runID)
	record.ArtifactID = model.ArtifactID(artifactID)
	return &record, nil
}
