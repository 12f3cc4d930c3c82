package model

import "github.com/secmon-lab/usersreport/pkg/domain/types"

// StalenessVerdict describes how long an account has been inactive and which signal decided it
type StalenessVerdict struct {
	DaysInactive  int
	Authoritative TimestampSignal
	Source        types.SignalSource
}

// PolicyVerdict is the license and SSO compliance outcome for a user's roles
type PolicyVerdict struct {
	LicenseTier    types.LicenseTier
	ComplianceNote types.ComplianceNote
}
