package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/service/storage"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage backends
const (
	StorageGCS   = "gcs"
	StorageLocal = "local"
)

// Storage holds CLI flags for the report artifact store
type Storage struct {
	backend  string
	bucket   string
	prefix   string
	localDir string
}

// Flags returns CLI flags for storage configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Artifact storage backend (gcs or local)",
			Category:    "Storage",
			Value:       StorageGCS,
			Sources:     cli.EnvVars("USERSREPORT_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for report artifacts (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("USERSREPORT_GCS_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("USERSREPORT_GCS_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.StringFlag{
			Name:        "local-dir",
			Usage:       "Directory for report artifacts when using local backend",
			Category:    "Storage",
			Value:       "./reports",
			Sources:     cli.EnvVars("USERSREPORT_LOCAL_DIR"),
			Destination: &x.localDir,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("local_dir", x.localDir),
	)
}

// Configure creates the artifact store and a closer for it
func (x *Storage) Configure(ctx context.Context) (interfaces.ArtifactStore, func(), error) {
	switch x.backend {
	case StorageGCS:
		if x.bucket == "" {
			return nil, nil, goerr.Wrap(ErrMissingFlag, "gcs-bucket is required when using gcs backend",
				goerr.V(FlagKey, "gcs-bucket"))
		}
		store, err := storage.NewGCS(ctx, x.bucket, storage.WithObjectPrefix(x.prefix))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize GCS store")
		}
		logging.From(ctx).Info("Using GCS artifact store", "bucket", x.bucket, "prefix", x.prefix)
		return store, func() {
			if err := store.Close(); err != nil {
				logging.From(ctx).Error("failed to close GCS store", "error", err.Error())
			}
		}, nil

	case StorageLocal:
		store, err := storage.NewLocal(x.localDir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize local store")
		}
		logging.From(ctx).Info("Using local artifact store", "dir", x.localDir)
		return store, func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid storage backend", goerr.V(BackendKey, x.backend))
	}
}
