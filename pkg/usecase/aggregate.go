package usecase

import (
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// EnrichedUser is the per-user outcome of the lookup and evaluation phase
type EnrichedUser struct {
	Candidate *model.UserCandidate
	Staleness model.StalenessVerdict
	Policy    model.PolicyVerdict

	// Degraded is set when at least one lookup failed and was treated as absent
	Degraded bool
}

// Aggregation is the deduplicated row set ready for the report builder
type Aggregation struct {
	Rows []model.ReportRow

	// Dropped counts candidates excluded for lacking a first or last name
	Dropped int
}

// BuildRow combines a candidate with its verdicts. It returns false when the
// candidate has no resolvable display name; such users are dropped, not failed.
func BuildRow(candidate *model.UserCandidate, staleness model.StalenessVerdict, policy model.PolicyVerdict, staleAfterDays int) (*model.ReportRow, bool) {
	if candidate == nil {
		return nil, false
	}

	name, ok := candidate.DisplayName()
	if !ok {
		return nil, false
	}

	if staleAfterDays <= 0 {
		staleAfterDays = model.DefaultStaleAfterDays
	}

	return &model.ReportRow{
		UserID:             candidate.ID,
		DisplayName:        name,
		Email:              candidate.Email,
		LicenseTier:        policy.LicenseTier,
		ComplianceNote:     policy.ComplianceNote,
		AuthoritativeDate:  staleness.Authoritative,
		DaysInactive:       staleness.DaysInactive,
		RemovalRecommended: staleness.DaysInactive > staleAfterDays,
	}, true
}

// Aggregate builds one row per distinct user ID. A later entry for the same
// ID replaces the earlier one but keeps the position of the first occurrence.
func Aggregate(users []*EnrichedUser, staleAfterDays int) *Aggregation {
	agg := &Aggregation{}
	index := make(map[model.UserID]int, len(users))

	for _, u := range users {
		if u == nil {
			continue
		}

		row, ok := BuildRow(u.Candidate, u.Staleness, u.Policy, staleAfterDays)
		if !ok {
			agg.Dropped++
			continue
		}
		row.Degraded = u.Degraded

		if pos, exists := index[row.UserID]; exists {
			agg.Rows[pos] = *row
			continue
		}
		index[row.UserID] = len(agg.Rows)
		agg.Rows = append(agg.Rows, *row)
	}

	return agg
}
