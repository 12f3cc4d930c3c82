package fixture

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

// Fixture is a directory snapshot in TOML. Timestamps are raw host strings
// and go through the same parsing as live data, so "null" or "Invalid Date"
// are skipped as absent.
type Fixture struct {
	Roles []Role `toml:"role"`
	Users []User `toml:"user"`
}

// Role is a role definition
type Role struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	CenterType string `toml:"center_type"`
	SSOLevel   *int   `toml:"sso_level"`
}

// User is an account with its activity history and role IDs
type User struct {
	ID            string   `toml:"id"`
	FirstName     string   `toml:"first_name"`
	LastName      string   `toml:"last_name"`
	Email         string   `toml:"email"`
	HasAccess     *bool    `toml:"has_access"`
	AccessGranted []string `toml:"access_granted"`
	Logins        []Login  `toml:"login"`
	Roles         []string `toml:"roles"`
}

// Login is one login audit entry; success defaults to true
type Login struct {
	At      string `toml:"at"`
	Success *bool  `toml:"success"`
}

// Validate checks if the Fixture is valid
func (f *Fixture) Validate() error {
	roleIDs := make(map[string]bool)
	for _, role := range f.Roles {
		if role.ID == "" {
			return goerr.New("role ID is required", goerr.V("name", role.Name))
		}
		if roleIDs[role.ID] {
			return goerr.New("duplicate role ID", goerr.V("id", role.ID))
		}
		roleIDs[role.ID] = true
	}

	for _, user := range f.Users {
		if user.ID == "" {
			return goerr.New("user ID is required", goerr.V("email", user.Email))
		}
	}
	return nil
}

// Load reads a TOML fixture file
func Load(path string) (*Fixture, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixture file", goerr.V("path", path))
	}

	f, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load fixture", goerr.V("path", path))
	}
	return f, nil
}

// Parse decodes and validates TOML fixture data
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML fixture")
	}
	if err := f.Validate(); err != nil {
		return nil, goerr.Wrap(err, "fixture validation failed")
	}
	return &f, nil
}

// Apply writes the fixture into a directory backend
func (f *Fixture) Apply(ctx context.Context, w interfaces.DirectoryWriter) error {
	for _, role := range f.Roles {
		if err := w.PutRole(ctx, model.Role{
			ID:         model.RoleID(role.ID),
			Name:       role.Name,
			CenterType: types.ParseCenterType(role.CenterType),
			SSOLevel:   role.SSOLevel,
		}); err != nil {
			return goerr.Wrap(err, "failed to put role", goerr.V("role_id", role.ID))
		}
	}

	for _, user := range f.Users {
		if err := applyUser(ctx, w, user); err != nil {
			return goerr.Wrap(err, "failed to apply user", goerr.V("user_id", user.ID))
		}
	}
	return nil
}

func applyUser(ctx context.Context, w interfaces.DirectoryWriter, user User) error {
	id := model.UserID(user.ID)
	hasAccess := user.HasAccess == nil || *user.HasAccess

	if err := w.PutUser(ctx, &model.UserCandidate{
		ID:        id,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, hasAccess); err != nil {
		return err
	}

	for _, raw := range user.AccessGranted {
		at, ok := model.ParseSignal(raw).Time()
		if !ok {
			continue
		}
		if err := w.AddAccessGrant(ctx, id, at); err != nil {
			return err
		}
	}

	for _, login := range user.Logins {
		at, ok := model.ParseSignal(login.At).Time()
		if !ok {
			continue
		}
		if err := w.AddLogin(ctx, id, at, login.Success == nil || *login.Success); err != nil {
			return err
		}
	}

	roleIDs := make([]model.RoleID, len(user.Roles))
	for i, r := range user.Roles {
		roleIDs[i] = model.RoleID(r)
	}
	return w.AssignRoles(ctx, id, roleIDs...)
}
