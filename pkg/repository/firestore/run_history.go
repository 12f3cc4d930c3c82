package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"google.golang.org/api/iterator"
)

const RunHistoryCollection = "run_history"

type runHistoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.RunHistoryRepository = &runHistoryRepository{}

func newRunHistoryRepository(client *firestore.Client) *runHistoryRepository {
	return &runHistoryRepository{
		client: client,
	}
}

// runRecordDoc is the Firestore persistence model
type runRecordDoc struct {
	ID            string     `firestore:"id"`
	GeneratedDate time.Time  `firestore:"generated_date"`
	ArtifactID    string     `firestore:"artifact_id"`
	Summary       summaryDoc `firestore:"summary"`
	CreatedAt     time.Time  `firestore:"created_at"`
}

type summaryDoc struct {
	TotalUsers             int `firestore:"total_users"`
	RemovalCandidates      int `firestore:"removal_candidates"`
	FullLicenses           int `firestore:"full_licenses"`
	EmployeeCenterLicenses int `firestore:"employee_center_licenses"`
	NonSAML                int `firestore:"non_saml"`
	Admins                 int `firestore:"admins"`
	Degraded               int `firestore:"degraded"`
	Dropped                int `firestore:"dropped"`
}

func (r *runHistoryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, RunHistoryCollection))
}

func (r *runHistoryRepository) toDoc(record *model.RunRecord) *runRecordDoc {
	s := record.Summary
	return &runRecordDoc{
		ID:            record.ID.String(),
		GeneratedDate: record.GeneratedDate,
		ArtifactID:    record.ArtifactID.String(),
		Summary: summaryDoc{
			TotalUsers:             s.TotalUsers,
			RemovalCandidates:      s.RemovalCandidates,
			FullLicenses:           s.FullLicenses,
			EmployeeCenterLicenses: s.EmployeeCenterLicenses,
			NonSAML:                s.NonSAML,
			Admins:                 s.Admins,
			Degraded:               s.Degraded,
			Dropped:                s.Dropped,
		},
		CreatedAt: record.CreatedAt,
	}
}

func (r *runHistoryRepository) fromDoc(doc *runRecordDoc) *model.RunRecord {
	s := doc.Summary
	return &model.RunRecord{
		ID:            model.RunID(doc.ID),
		GeneratedDate: doc.GeneratedDate,
		ArtifactID:    model.ArtifactID(doc.ArtifactID),
		Summary: model.ReportSummary{
			TotalUsers:             s.TotalUsers,
			RemovalCandidates:      s.RemovalCandidates,
			FullLicenses:           s.FullLicenses,
			EmployeeCenterLicenses: s.EmployeeCenterLicenses,
			NonSAML:                s.NonSAML,
			Admins:                 s.Admins,
			Degraded:               s.Degraded,
			Dropped:                s.Dropped,
		},
		CreatedAt: doc.CreatedAt,
	}
}

// Save stores a run record keyed by its run ID
func (r *runHistoryRepository) Save(ctx context.Context, record *model.RunRecord) error {
	if record == nil || record.ID == "" {
		return goerr.New("run record ID is required")
	}

	if _, err := r.collection().Doc(record.ID.String()).Set(ctx, r.toDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to save run record", goerr.V("run_id", record.ID))
	}
	return nil
}

// Latest returns the most recently created record, or nil when none exists
func (r *runHistoryRepository) Latest(ctx context.Context) (*model.RunRecord, error) {
	iter := r.collection().OrderBy("created_at", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query run history")
	}

	var d runRecordDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal run record", goerr.V("docID", doc.Ref.ID))
	}
	return r.fromDoc(&d), nil
}
