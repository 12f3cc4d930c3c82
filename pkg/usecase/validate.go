package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// ValidationIssue represents a single data quality issue found in the directory
type ValidationIssue struct {
	UserID  model.UserID
	Message string
}

// ValidationResult holds the results of a directory check
type ValidationResult struct {
	EligibleUsers int
	Issues        []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDirectory enumerates the eligible users and reports entries that a
// run would drop or render incompletely. It probes the lookups with the first
// user to confirm the backend answers them. It does NOT modify any data.
func (uc *UseCases) ValidateDirectory(ctx context.Context) (*ValidationResult, error) {
	dir := uc.repo.Directory()

	candidates, err := dir.ListEligibleUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err), "failed to list eligible users")
	}

	result := &ValidationResult{EligibleUsers: len(candidates)}
	seen := make(map[model.UserID]struct{}, len(candidates))

	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			result.AddIssue(ValidationIssue{UserID: c.ID, Message: "duplicate user ID"})
		}
		seen[c.ID] = struct{}{}

		if _, ok := c.DisplayName(); !ok {
			result.AddIssue(ValidationIssue{UserID: c.ID, Message: "missing first or last name, user will be excluded"})
		}
		if c.Email == "" {
			result.AddIssue(ValidationIssue{UserID: c.ID, Message: "missing email"})
		}
	}

	if len(candidates) == 0 {
		return result, nil
	}

	probe := candidates[0].ID
	if _, err := dir.MostRecentAccessGrant(ctx, probe); err != nil {
		return nil, goerr.Wrap(err, "provisioning lookup failed", goerr.V(UserIDKey, probe))
	}
	if _, err := dir.MostRecentLogin(ctx, probe); err != nil {
		return nil, goerr.Wrap(err, "login lookup failed", goerr.V(UserIDKey, probe))
	}
	if _, err := dir.EntitlementsFor(ctx, probe); err != nil {
		return nil, goerr.Wrap(err, "entitlement lookup failed", goerr.V(UserIDKey, probe))
	}

	return result, nil
}
