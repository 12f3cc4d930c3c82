package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

const (
	// RemovalNote marks a row recommended for access removal
	RemovalNote = "Removing Access"

	// DefaultStaleAfterDays is the inactivity threshold above which removal is recommended
	DefaultStaleAfterDays = 90

	reportFileSuffix = "-UsersReport.csv"
)

// ReportColumns is the CSV header, kept literal for downstream consumers
var ReportColumns = []string{
	"Internal ID",
	"Name",
	"User Name",
	"License Type",
	"Last Log-in Date",
	"Days Since Logged In",
	"Notes",
}

// ReportRow is one line of the users report
type ReportRow struct {
	UserID             UserID
	DisplayName        string
	Email              string
	LicenseTier        types.LicenseTier
	ComplianceNote     types.ComplianceNote
	AuthoritativeDate  TimestampSignal
	DaysInactive       int
	RemovalRecommended bool

	// Degraded is set when one of the lookups for this user failed and its
	// signal was treated as absent
	Degraded bool
}

// Notes renders the notes column
func (x ReportRow) Notes() string {
	var notes []string
	if x.RemovalRecommended {
		notes = append(notes, RemovalNote)
	}
	if !x.ComplianceNote.IsNone() {
		notes = append(notes, x.ComplianceNote.String())
	}
	return strings.Join(notes, "; ")
}

// ReportSummary holds counters derived from the report rows
type ReportSummary struct {
	TotalUsers             int `json:"total_users"`
	RemovalCandidates      int `json:"removal_candidates"`
	FullLicenses           int `json:"full_licenses"`
	EmployeeCenterLicenses int `json:"employee_center_licenses"`
	NonSAML                int `json:"non_saml"`
	Admins                 int `json:"admins"`
	Degraded               int `json:"degraded"`
	Dropped                int `json:"dropped"`
}

// Report is the terminal artifact of a run
type Report struct {
	RunID         RunID
	GeneratedDate time.Time
	Rows          []ReportRow
	CSV           []byte
	HTML          string
	Summary       ReportSummary
}

// FileName returns the artifact name, e.g. 2024-01-31-UsersReport.csv
func (x *Report) FileName() string {
	return ReportFileName(x.GeneratedDate)
}

// ReportFileName returns the artifact name for the given report date
func ReportFileName(date time.Time) string {
	return date.Format(time.DateOnly) + reportFileSuffix
}
