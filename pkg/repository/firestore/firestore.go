package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

type Firestore struct {
	client     *firestore.Client
	directory  *directoryRepository
	runHistory *runHistoryRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.directory.collectionPrefix = prefix
		f.runHistory.collectionPrefix = prefix
	}
}

// WithAdministratorRoleID sets the role ID reported as administrator
func WithAdministratorRoleID(id model.RoleID) Option {
	return func(f *Firestore) {
		f.directory.adminRoleID = id
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		directory:  newDirectoryRepository(client),
		runHistory: newRunHistoryRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Directory() interfaces.DirectoryRepository {
	return f.directory
}

func (f *Firestore) DirectoryWriter() interfaces.DirectoryWriter {
	return f.directory
}

func (f *Firestore) RunHistory() interfaces.RunHistoryRepository {
	return f.runHistory
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName returns name with the optional prefix applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
