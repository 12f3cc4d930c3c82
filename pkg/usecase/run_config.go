package usecase

import (
	"net/mail"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

const (
	// MaxRecipients is the largest recipient list a run accepts
	MaxRecipients = 10

	// DefaultSubject is the email subject when none is configured
	DefaultSubject = "Users Report"
)

// RunConfig is the configuration of one report run
type RunConfig struct {
	// Environment is the environment the job runs in; empty means primary
	Environment        string
	PrimaryEnvironment string
	AllowNonPrimary    bool

	// Destination is the opaque folder the artifact is stored under
	Destination string

	Recipients     []string
	Author         string
	ReplyTo        string
	Subject        string
	JobName        string
	StaleAfterDays int

	// DryRun builds the report without storing or notifying
	DryRun bool

	// Today overrides the report date; zero means the current date
	Today time.Time
}

// Validate checks the configuration before any lookup is made
func (x *RunConfig) Validate() error {
	if strings.TrimSpace(x.Destination) == "" && !x.DryRun {
		return goerr.Wrap(ErrInvalidConfig, "destination is required")
	}

	if len(x.Recipients) == 0 && !x.DryRun {
		return goerr.Wrap(ErrInvalidConfig, "at least one recipient is required")
	}
	if len(x.Recipients) > MaxRecipients {
		return goerr.Wrap(ErrInvalidConfig, "too many recipients",
			goerr.V("count", len(x.Recipients)),
			goerr.V("max", MaxRecipients))
	}
	for _, r := range x.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid recipient address",
				goerr.V("recipient", r),
				goerr.V("cause", err.Error()))
		}
	}

	if x.Author != "" {
		if _, err := mail.ParseAddress(x.Author); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid author address",
				goerr.V("author", x.Author),
				goerr.V("cause", err.Error()))
		}
	}
	if x.ReplyTo != "" {
		if _, err := mail.ParseAddress(x.ReplyTo); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid reply-to address",
				goerr.V("reply_to", x.ReplyTo),
				goerr.V("cause", err.Error()))
		}
	}

	if x.StaleAfterDays < 0 {
		return goerr.Wrap(ErrInvalidConfig, "stale-after days must not be negative",
			goerr.V("stale_after_days", x.StaleAfterDays))
	}

	return nil
}

// IsPrimaryEnvironment reports whether the run is allowed to proceed
func (x *RunConfig) IsPrimaryEnvironment() bool {
	if x.AllowNonPrimary || x.Environment == "" || x.PrimaryEnvironment == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(x.Environment), strings.TrimSpace(x.PrimaryEnvironment))
}

func (x *RunConfig) staleAfterDays() int {
	if x.StaleAfterDays <= 0 {
		return model.DefaultStaleAfterDays
	}
	return x.StaleAfterDays
}

func (x *RunConfig) subject() string {
	if x.Subject == "" {
		return DefaultSubject
	}
	return x.Subject
}

func (x *RunConfig) replyTo() string {
	if x.ReplyTo == "" {
		return model.DefaultReplyTo
	}
	return x.ReplyTo
}

// SplitRecipients splits a recipient list separated by ';' or ',' and drops
// empty entries.
func SplitRecipients(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
