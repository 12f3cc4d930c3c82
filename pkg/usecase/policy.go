package usecase

import (
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

// PolicyOptions tunes the entitlement policy
type PolicyOptions struct {
	// SSOFullLevel is the SAML SSO permission level that counts as compliant
	SSOFullLevel int
}

// DefaultPolicyOptions returns the policy used when nothing is configured
func DefaultPolicyOptions() PolicyOptions {
	return PolicyOptions{SSOFullLevel: model.DefaultSSOFullLevel}
}

// EvaluatePolicy derives the license tier and SSO compliance note from a
// user's roles. The result does not depend on the order of the roles.
//
// Any role outside the employee center makes the user a Full license holder;
// an empty set falls back to Employee Center. An administrator role always
// yields the Admin note, otherwise any role without full SAML SSO yields
// Non-SAML.
func EvaluatePolicy(set model.EntitlementSet, opts PolicyOptions) model.PolicyVerdict {
	fullLevel := opts.SSOFullLevel
	if fullLevel == 0 {
		fullLevel = model.DefaultSSOFullLevel
	}

	var full, admin, nonSAML bool
	for _, role := range set {
		if !role.CenterType.IsEmployee() {
			full = true
		}
		if role.IsAdministrator {
			admin = true
		}
		if !role.IsSSOCompliant(fullLevel) {
			nonSAML = true
		}
	}

	verdict := model.PolicyVerdict{
		LicenseTier:    types.LicenseTierEmployeeCenter,
		ComplianceNote: types.ComplianceNoteNone,
	}
	if full {
		verdict.LicenseTier = types.LicenseTierFull
	}

	switch {
	case admin:
		verdict.ComplianceNote = types.ComplianceNoteAdmin
	case nonSAML:
		verdict.ComplianceNote = types.ComplianceNoteNonSAML
	}

	return verdict
}
