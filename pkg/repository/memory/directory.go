package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

type userEntry struct {
	candidate model.UserCandidate
	hasAccess bool
}

type loginEntry struct {
	at      time.Time
	success bool
}

type directoryRepository struct {
	mu          sync.RWMutex
	adminRoleID model.RoleID
	users       map[model.UserID]*userEntry
	grants      map[model.UserID][]time.Time
	logins      map[model.UserID][]loginEntry
	roles       map[model.RoleID]model.Role
	userRoles   map[model.UserID][]model.RoleID
}

var (
	_ interfaces.DirectoryRepository = &directoryRepository{}
	_ interfaces.DirectoryWriter     = &directoryRepository{}
)

func newDirectoryRepository() *directoryRepository {
	return &directoryRepository{
		adminRoleID: model.DefaultAdministratorRoleID,
		users:       make(map[model.UserID]*userEntry),
		grants:      make(map[model.UserID][]time.Time),
		logins:      make(map[model.UserID][]loginEntry),
		roles:       make(map[model.RoleID]model.Role),
		userRoles:   make(map[model.UserID][]model.RoleID),
	}
}

// PutUser stores or replaces a user. Only users with access are listed as eligible.
func (r *directoryRepository) PutUser(ctx context.Context, user *model.UserCandidate, hasAccess bool) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = &userEntry{candidate: *user, hasAccess: hasAccess}
	return nil
}

// AddAccessGrant records that access was granted to the user at the given time
func (r *directoryRepository) AddAccessGrant(ctx context.Context, id model.UserID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grants[id] = append(r.grants[id], at)
	return nil
}

// AddLogin records a login attempt of the user
func (r *directoryRepository) AddLogin(ctx context.Context, id model.UserID, at time.Time, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logins[id] = append(r.logins[id], loginEntry{at: at, success: success})
	return nil
}

// PutRole stores or replaces a role definition
func (r *directoryRepository) PutRole(ctx context.Context, role model.Role) error {
	if role.ID == "" {
		return goerr.New("role ID is required", goerr.V("name", role.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if role.SSOLevel != nil {
		role.SSOLevel = model.SSOLevel(*role.SSOLevel)
	}
	r.roles[role.ID] = role
	return nil
}

// AssignRoles replaces the roles held by the user
func (r *directoryRepository) AssignRoles(ctx context.Context, id model.UserID, roleIDs ...model.RoleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.userRoles[id] = slices.Clone(roleIDs)
	return nil
}

// ListEligibleUsers returns users that currently have access, ordered by ID
func (r *directoryRepository) ListEligibleUsers(ctx context.Context) ([]*model.UserCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.UserCandidate, 0, len(r.users))
	for _, entry := range r.users {
		if !entry.hasAccess {
			continue
		}
		// Return a copy to prevent external modifications
		candidate := entry.candidate
		users = append(users, &candidate)
	}

	slices.SortFunc(users, func(a, b *model.UserCandidate) int {
		return model.CompareUserID(a.ID, b.ID)
	})
	return users, nil
}

// MostRecentAccessGrant returns the latest grant time, Absent when there is none
func (r *directoryRepository) MostRecentAccessGrant(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	for _, at := range r.grants[id] {
		if at.After(latest) {
			latest = at
		}
	}
	return model.Present(latest), nil
}

// MostRecentLogin returns the latest successful login, Absent when there is none
func (r *directoryRepository) MostRecentLogin(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	for _, login := range r.logins[id] {
		if login.success && login.at.After(latest) {
			latest = login.at
		}
	}
	return model.Present(latest), nil
}

// EntitlementsFor returns the roles held by the user. Unknown role IDs are
// reported as non-employee roles without SSO.
func (r *directoryRepository) EntitlementsFor(ctx context.Context, id model.UserID) (model.EntitlementSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roleIDs := r.userRoles[id]
	set := make(model.EntitlementSet, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, ok := r.roles[roleID]
		if !ok {
			role = model.Role{ID: roleID, CenterType: types.CenterTypeFull}
		}
		if role.SSOLevel != nil {
			role.SSOLevel = model.SSOLevel(*role.SSOLevel)
		}
		role.IsAdministrator = role.ID == r.adminRoleID
		set = append(set, role)
	}
	return set, nil
}
