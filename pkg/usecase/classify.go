package usecase

import (
	"time"

	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

const day = 24 * time.Hour

// ClassifyStaleness picks the authoritative activity signal and computes how
// many whole days have passed since it. The later of provisioning and login
// wins; a tie resolves to login. When both are absent the account is reported
// with zero inactive days and no authoritative date.
func ClassifyStaleness(provisioning, login model.TimestampSignal, today time.Time) model.StalenessVerdict {
	var (
		authoritative model.TimestampSignal
		source        types.SignalSource
	)

	switch {
	case !provisioning.IsPresent() && !login.IsPresent():
		return model.StalenessVerdict{
			Authoritative: model.Absent(),
			Source:        types.SignalSourceNone,
		}
	case provisioning.After(login):
		authoritative, source = provisioning, types.SignalSourceProvisioning
	default:
		authoritative, source = login, types.SignalSourceLogin
	}

	at, _ := authoritative.Time()
	return model.StalenessVerdict{
		DaysInactive:  daysBetween(at, today),
		Authoritative: authoritative,
		Source:        source,
	}
}

// daysBetween returns the whole days elapsed between a and b, floored and
// independent of order or location.
func daysBetween(a, b time.Time) int {
	elapsed := b.Sub(a)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(elapsed / day)
}
