package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// DirectorySource enumerates the accounts eligible for evaluation
type DirectorySource interface {
	// ListEligibleUsers returns every account that currently has access, ordered by ID.
	// The sequence is finite and restartable only by calling ListEligibleUsers again.
	ListEligibleUsers(ctx context.Context) ([]*model.UserCandidate, error)
}

// ProvisioningLookup resolves when access was last granted to an account
type ProvisioningLookup interface {
	// MostRecentAccessGrant returns Absent when the account has no recorded grant
	MostRecentAccessGrant(ctx context.Context, id model.UserID) (model.TimestampSignal, error)
}

// AuthenticationLookup resolves the last successful login of an account
type AuthenticationLookup interface {
	// MostRecentLogin returns Absent when the account never logged in
	MostRecentLogin(ctx context.Context, id model.UserID) (model.TimestampSignal, error)
}

// EntitlementLookup resolves the roles held by an account
type EntitlementLookup interface {
	EntitlementsFor(ctx context.Context, id model.UserID) (model.EntitlementSet, error)
}

// DirectoryRepository bundles the read-only lookups against the host directory
type DirectoryRepository interface {
	DirectorySource
	ProvisioningLookup
	AuthenticationLookup
	EntitlementLookup
}

// DirectoryWriter loads directory snapshots into a backend. Reports never
// write; it serves the import command and tests.
type DirectoryWriter interface {
	// PutUser stores or replaces a user. Only users with access are eligible.
	PutUser(ctx context.Context, user *model.UserCandidate, hasAccess bool) error
	AddAccessGrant(ctx context.Context, id model.UserID, at time.Time) error
	AddLogin(ctx context.Context, id model.UserID, at time.Time, success bool) error
	// PutRole stores or replaces a role definition
	PutRole(ctx context.Context, role model.Role) error
	// AssignRoles replaces the roles held by a user
	AssignRoles(ctx context.Context, id model.UserID, roleIDs ...model.RoleID) error
}
