package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/repository/firestore"
	"github.com/secmon-lab/usersreport/pkg/repository/fixture"
	"github.com/secmon-lab/usersreport/pkg/repository/memory"
	"github.com/secmon-lab/usersreport/pkg/repository/postgres"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	postgresURL      string
	postgresSchema   string
	fixturePath      string
	adminRoleID      string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, postgres or memory)",
			Category:    "Repository",
			Value:       BackendFirestore,
			Sources:     cli.EnvVars("USERSREPORT_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("USERSREPORT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("USERSREPORT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("USERSREPORT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "postgres-url",
			Usage:       "PostgreSQL connection URL (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("USERSREPORT_POSTGRES_URL"),
			Destination: &r.postgresURL,
		},
		&cli.StringFlag{
			Name:        "postgres-schema",
			Usage:       "PostgreSQL schema holding the directory tables",
			Category:    "Repository",
			Value:       postgres.DefaultSchema,
			Sources:     cli.EnvVars("USERSREPORT_POSTGRES_SCHEMA"),
			Destination: &r.postgresSchema,
		},
		&cli.StringFlag{
			Name:        "fixture",
			Usage:       "TOML directory fixture loaded into the memory backend",
			Category:    "Repository",
			Sources:     cli.EnvVars("USERSREPORT_FIXTURE"),
			Destination: &r.fixturePath,
		},
		&cli.StringFlag{
			Name:        "admin-role-id",
			Usage:       "Role ID treated as administrator",
			Category:    "Repository",
			Value:       model.DefaultAdministratorRoleID.String(),
			Sources:     cli.EnvVars("USERSREPORT_ADMIN_ROLE_ID"),
			Destination: &r.adminRoleID,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("postgres_schema", r.postgresSchema),
		slog.Bool("postgres_url.set", r.postgresURL != ""),
		slog.String("fixture", r.fixturePath),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionPrefix returns the Firestore collection name prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

func (r *Repository) adminRole() model.RoleID {
	if r.adminRoleID == "" {
		return model.DefaultAdministratorRoleID
	}
	return model.RoleID(r.adminRoleID)
}

// ConfigurePostgres opens the Postgres backend. The caller is responsible for
// calling Close() on the returned repository.
func (r *Repository) ConfigurePostgres(ctx context.Context) (*postgres.Postgres, error) {
	if r.postgresURL == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "postgres-url is required when using postgres backend",
			goerr.V(FlagKey, "postgres-url"))
	}

	repo, err := postgres.New(ctx, r.postgresURL,
		postgres.WithSchema(r.postgresSchema),
		postgres.WithAdministratorRoleID(r.adminRole()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize postgres repository")
	}
	return repo, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID,
			firestore.WithCollectionPrefix(r.collectionPrefix),
			firestore.WithAdministratorRoleID(r.adminRole()),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.From(ctx).Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres:
		repo, err := r.ConfigurePostgres(ctx)
		if err != nil {
			return nil, err
		}
		logging.From(ctx).Info("Using PostgreSQL repository", "schema", r.postgresSchema)
		return repo, nil

	case BackendMemory:
		repo := memory.New(memory.WithAdministratorRoleID(r.adminRole()))
		if r.fixturePath != "" {
			f, err := fixture.Load(r.fixturePath)
			if err != nil {
				return nil, err
			}
			if err := f.Apply(ctx, repo.DirectoryWriter()); err != nil {
				return nil, goerr.Wrap(err, "failed to apply fixture", goerr.V(ConfigPathKey, r.fixturePath))
			}
		}
		logging.From(ctx).Info("Using in-memory repository (development mode)", "fixture", r.fixturePath)
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
