package fixture_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
	"github.com/secmon-lab/usersreport/pkg/repository/fixture"
	"github.com/secmon-lab/usersreport/pkg/repository/memory"
)

func TestLoadAndApply(t *testing.T) {
	ctx := context.Background()

	f, err := fixture.Load("testdata/directory.toml")
	gt.NoError(t, err).Required()
	gt.Array(t, f.Roles).Length(3)
	gt.Array(t, f.Users).Length(3)

	repo := memory.New()
	gt.NoError(t, f.Apply(ctx, repo.DirectoryWriter())).Required()

	users, err := repo.Directory().ListEligibleUsers(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, users).Length(2).Required()
	gt.Value(t, users[0].ID).Equal(model.UserID("7"))
	gt.Value(t, users[1].ID).Equal(model.UserID("12"))
	gt.Value(t, users[1].FirstName).Equal("Smith, John")

	t.Run("sentinel dates are skipped", func(t *testing.T) {
		grant, err := repo.Directory().MostRecentAccessGrant(ctx, "12")
		gt.NoError(t, err)
		gt.Bool(t, grant.IsPresent()).False()
	})

	t.Run("day-first dates are parsed", func(t *testing.T) {
		grant, err := repo.Directory().MostRecentAccessGrant(ctx, "7")
		gt.NoError(t, err)
		gt.Value(t, grant.DateString()).Equal("2024-01-15")
	})

	t.Run("failed logins are ignored", func(t *testing.T) {
		login, err := repo.Directory().MostRecentLogin(ctx, "7")
		gt.NoError(t, err)
		at, ok := login.Time()
		gt.Bool(t, ok).True()
		gt.Value(t, at).Equal(time.Date(2024, 3, 20, 9, 15, 0, 0, time.UTC))
	})

	t.Run("roles resolve with administrator flag", func(t *testing.T) {
		set, err := repo.Directory().EntitlementsFor(ctx, "12")
		gt.NoError(t, err).Required()
		gt.Array(t, set).Length(2).Required()

		var admin bool
		for _, role := range set {
			if role.IsAdministrator {
				admin = true
				gt.Value(t, role.CenterType).Equal(types.CenterTypeFull)
			}
		}
		gt.Bool(t, admin).True()
	})

	t.Run("unknown center type is carried verbatim", func(t *testing.T) {
		gt.Value(t, f.Roles[2].CenterType).Equal("ACCOUNTING")
		gt.Value(t, f.Roles[2].SSOLevel).Nil()
	})
}

func TestParse(t *testing.T) {
	t.Run("duplicate role", func(t *testing.T) {
		_, err := fixture.Parse([]byte(`
[[role]]
id = "1"
[[role]]
id = "1"
`))
		gt.Value(t, err).NotNil()
	})

	t.Run("missing user id", func(t *testing.T) {
		_, err := fixture.Parse([]byte(`
[[user]]
first_name = "No"
last_name = "ID"
`))
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid toml", func(t *testing.T) {
		_, err := fixture.Parse([]byte(`[[user`))
		gt.Value(t, err).NotNil()
	})
}
