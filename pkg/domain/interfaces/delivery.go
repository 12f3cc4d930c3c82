package interfaces

import (
	"context"

	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// ArtifactStore persists report artifacts
type ArtifactStore interface {
	Store(ctx context.Context, artifact *model.Artifact) (model.ArtifactID, error)
}

// Notifier delivers the report summary to people
type Notifier interface {
	// Name identifies the notifier in logs
	Name() string
	Notify(ctx context.Context, n *model.Notification) error
}
