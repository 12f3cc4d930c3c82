package usecase_test

import (
	"math/rand/v2"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
	"github.com/secmon-lab/usersreport/pkg/usecase"
)

func fullRole(id string, sso *int) model.Role {
	return model.Role{ID: model.RoleID(id), CenterType: types.CenterTypeFull, SSOLevel: sso}
}

func employeeRole(id string, sso *int) model.Role {
	return model.Role{ID: model.RoleID(id), CenterType: types.CenterTypeEmployee, SSOLevel: sso}
}

func adminRole() model.Role {
	return model.Role{ID: model.DefaultAdministratorRoleID, CenterType: types.CenterTypeFull, IsAdministrator: true, SSOLevel: model.SSOLevel(4)}
}

func TestEvaluatePolicy(t *testing.T) {
	full := model.SSOLevel(4)

	tests := []struct {
		name     string
		set      model.EntitlementSet
		wantTier types.LicenseTier
		wantNote types.ComplianceNote
	}{
		{
			name:     "empty set defaults to employee center without note",
			set:      nil,
			wantTier: types.LicenseTierEmployeeCenter,
			wantNote: types.ComplianceNoteNone,
		},
		{
			name:     "all employee roles with full sso",
			set:      model.EntitlementSet{employeeRole("1", full), employeeRole("2", full)},
			wantTier: types.LicenseTierEmployeeCenter,
			wantNote: types.ComplianceNoteNone,
		},
		{
			name:     "any full role yields full license",
			set:      model.EntitlementSet{fullRole("1", full), employeeRole("2", full)},
			wantTier: types.LicenseTierFull,
			wantNote: types.ComplianceNoteNone,
		},
		{
			name:     "unknown center type counts as non-employee",
			set:      model.EntitlementSet{{ID: "9", CenterType: types.ParseCenterType("accounting"), SSOLevel: full}},
			wantTier: types.LicenseTierFull,
			wantNote: types.ComplianceNoteNone,
		},
		{
			name:     "partial sso level is non-saml",
			set:      model.EntitlementSet{employeeRole("1", model.SSOLevel(2))},
			wantTier: types.LicenseTierEmployeeCenter,
			wantNote: types.ComplianceNoteNonSAML,
		},
		{
			name:     "missing sso permission is non-saml",
			set:      model.EntitlementSet{fullRole("1", full), fullRole("2", nil)},
			wantTier: types.LicenseTierFull,
			wantNote: types.ComplianceNoteNonSAML,
		},
		{
			name:     "administrator overrides non-saml",
			set:      model.EntitlementSet{employeeRole("1", nil), adminRole()},
			wantTier: types.LicenseTierFull,
			wantNote: types.ComplianceNoteAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.EvaluatePolicy(tt.set, usecase.DefaultPolicyOptions())
			gt.Value(t, got.LicenseTier).Equal(tt.wantTier)
			gt.Value(t, got.ComplianceNote).Equal(tt.wantNote)
		})
	}
}

func TestEvaluatePolicy_CustomFullLevel(t *testing.T) {
	set := model.EntitlementSet{employeeRole("1", model.SSOLevel(3))}

	got := usecase.EvaluatePolicy(set, usecase.PolicyOptions{SSOFullLevel: 3})
	gt.Value(t, got.ComplianceNote).Equal(types.ComplianceNoteNone)

	got = usecase.EvaluatePolicy(set, usecase.PolicyOptions{})
	gt.Value(t, got.ComplianceNote).Equal(types.ComplianceNoteNonSAML)
}

func TestEvaluatePolicy_OrderIndependent(t *testing.T) {
	sets := []model.EntitlementSet{
		{employeeRole("1", model.SSOLevel(4)), fullRole("2", nil), adminRole()},
		{employeeRole("1", model.SSOLevel(4)), employeeRole("2", model.SSOLevel(1)), employeeRole("3", nil)},
		{fullRole("1", model.SSOLevel(4)), employeeRole("2", model.SSOLevel(4)), fullRole("3", model.SSOLevel(4)), employeeRole("4", nil)},
	}
	rng := rand.New(rand.NewPCG(7, 11))

	for i, set := range sets {
		want := usecase.EvaluatePolicy(set, usecase.DefaultPolicyOptions())

		for range 50 {
			shuffled := make(model.EntitlementSet, len(set))
			copy(shuffled, set)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			got := usecase.EvaluatePolicy(shuffled, usecase.DefaultPolicyOptions())
			if got != want {
				t.Fatalf("set %d: shuffled order changed verdict: want %+v, got %+v", i, want, got)
			}
		}
	}
}
