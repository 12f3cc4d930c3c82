package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/cli/config"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

const fixtureTOML = `
[[role]]
id = "3"
name = "Administrator"
center_type = "FULL"
sso_level = 4

[[user]]
id = "7"
first_name = "Ada"
last_name = "Lovelace"
email = "ada@example.com"
access_granted = ["2024-01-15"]
roles = ["3"]

[[user]]
id = "8"
first_name = "Former"
last_name = "Employee"
has_access = false
`

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend with fixture", func(t *testing.T) {
		path := writeFile(t, "directory.toml", fixtureTOML)
		repo, err := config.NewRepositoryForTest(config.BackendMemory, path).Configure(ctx)
		gt.NoError(t, err).Required()
		defer func() { gt.NoError(t, repo.Close()) }()

		users, err := repo.Directory().ListEligibleUsers(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(1).Required()
		gt.Value(t, users[0].ID).Equal(model.UserID("7"))

		set, err := repo.Directory().EntitlementsFor(ctx, "7")
		gt.NoError(t, err).Required()
		gt.Array(t, set).Length(1).Required()
		gt.Bool(t, set[0].IsAdministrator).True()
	})

	t.Run("memory backend without fixture is empty", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "").Configure(ctx)
		gt.NoError(t, err).Required()

		users, err := repo.Directory().ListEligibleUsers(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(0)
	})

	t.Run("firestore requires project ID", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("postgres requires URL", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendPostgres, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
