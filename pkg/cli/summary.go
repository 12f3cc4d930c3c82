package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

const defaultSummaryLimit = 20

var (
	headingColor = color.New(color.Bold)
	flaggedColor = color.New(color.FgRed)
	noteColor    = color.New(color.FgYellow)
)

// printSummary writes a human readable digest of the report, listing at
// most limit of the users flagged for removal.
func printSummary(w io.Writer, result *model.RunResult, limit int) {
	if result == nil || result.Report == nil {
		return
	}
	report := result.Report
	s := report.Summary

	_, _ = headingColor.Fprintf(w, "Users report %s (run %s)\n", report.FileName(), result.RunID)
	_, _ = fmt.Fprintf(w, "  active users:     %d\n", s.TotalUsers)
	_, _ = fmt.Fprintf(w, "  full licenses:    %d\n", s.FullLicenses)
	_, _ = fmt.Fprintf(w, "  employee center:  %d\n", s.EmployeeCenterLicenses)
	_, _ = fmt.Fprintf(w, "  non-SAML:         %d\n", s.NonSAML)
	_, _ = fmt.Fprintf(w, "  admins:           %d\n", s.Admins)
	if s.Degraded > 0 {
		_, _ = noteColor.Fprintf(w, "  degraded:         %d\n", s.Degraded)
	}
	if s.Dropped > 0 {
		_, _ = noteColor.Fprintf(w, "  excluded:         %d\n", s.Dropped)
	}
	_, _ = flaggedColor.Fprintf(w, "  flagged:          %d\n", s.RemovalCandidates)

	listed := 0
	for _, row := range report.Rows {
		if !row.RemovalRecommended {
			continue
		}
		if limit > 0 && listed >= limit {
			_, _ = fmt.Fprintf(w, "    ...and %d more\n", s.RemovalCandidates-listed)
			break
		}
		_, _ = fmt.Fprintf(w, "    %s %s (%d days, last %s)\n",
			row.UserID, row.DisplayName, row.DaysInactive, row.AuthoritativeDate.DateString())
		listed++
	}
}
