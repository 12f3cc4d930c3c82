package model

import "github.com/secmon-lab/usersreport/pkg/domain/types"

// RoleID is the identifier of a role in the host system
type RoleID string

// String returns the string representation of RoleID
func (x RoleID) String() string {
	return string(x)
}

const (
	// DefaultAdministratorRoleID is the internal ID the host assigns to its built-in administrator role
	DefaultAdministratorRoleID RoleID = "3"

	// DefaultSSOFullLevel is the permission level meaning "SAML single sign-on: Full"
	DefaultSSOFullLevel = 4

	// SAMLSSOPermission is the permission key of the SAML single sign-on permission
	SAMLSSOPermission = "ADMI_SAMLSSO"
)

// Role is one role assignment held by a user
type Role struct {
	ID              RoleID
	Name            string
	IsAdministrator bool
	CenterType      types.CenterType

	// SSOLevel is the level of the SAML SSO permission on the role; nil when the
	// role does not list the permission at all.
	SSOLevel *int
}

// IsSSOCompliant reports whether the role grants SAML SSO at fullLevel
func (x Role) IsSSOCompliant(fullLevel int) bool {
	return x.SSOLevel != nil && *x.SSOLevel == fullLevel
}

// EntitlementSet is the set of roles held by one user
type EntitlementSet []Role

// SSOLevel returns a pointer to level, for building Role values
func SSOLevel(level int) *int {
	return &level
}
