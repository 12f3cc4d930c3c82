package usecase

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"html/template"
	"sort"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
)

// DefaultJobName is shown in the email footer when no job name is configured
const DefaultJobName = "usersreport"

//go:embed template/report_table.html
var reportTableTmpl string

//go:embed template/report_email.html
var reportEmailTmpl string

var (
	reportTable = template.Must(template.New("report_table").Parse(reportTableTmpl))
	reportEmail = template.Must(template.New("report_email").Parse(reportEmailTmpl))
)

// ReportOptions carries run metadata stamped onto a built report
type ReportOptions struct {
	RunID   model.RunID
	Dropped int
}

// BuildReport sorts the rows and renders the CSV artifact and the HTML table.
// Rows are ordered by days inactive, most stale first, with ties broken by
// user ID so that the same row set always renders the same bytes.
func BuildReport(rows []model.ReportRow, today time.Time, opts ReportOptions) (*model.Report, error) {
	sorted := make([]model.ReportRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DaysInactive != sorted[j].DaysInactive {
			return sorted[i].DaysInactive > sorted[j].DaysInactive
		}
		return model.CompareUserID(sorted[i].UserID, sorted[j].UserID) < 0
	})

	csvData, err := renderCSV(sorted)
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := reportTable.Execute(&html, sorted); err != nil {
		return nil, goerr.Wrap(err, "failed to render report table")
	}

	summary := summarize(sorted)
	summary.Dropped = opts.Dropped

	return &model.Report{
		RunID:         opts.RunID,
		GeneratedDate: calendarDate(today),
		Rows:          sorted,
		CSV:           csvData,
		HTML:          html.String(),
		Summary:       summary,
	}, nil
}

func renderCSV(rows []model.ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.ReportColumns); err != nil {
		return nil, goerr.Wrap(err, "failed to write report header")
	}
	for _, row := range rows {
		record := []string{
			row.UserID.String(),
			row.DisplayName,
			row.Email,
			row.LicenseTier.String(),
			row.AuthoritativeDate.DateString(),
			strconv.Itoa(row.DaysInactive),
			row.Notes(),
		}
		if err := w.Write(record); err != nil {
			return nil, goerr.Wrap(err, "failed to write report row", goerr.V(UserIDKey, row.UserID))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush report")
	}
	return buf.Bytes(), nil
}

func summarize(rows []model.ReportRow) model.ReportSummary {
	var s model.ReportSummary
	for _, row := range rows {
		s.TotalUsers++
		if row.RemovalRecommended {
			s.RemovalCandidates++
		}
		switch row.LicenseTier {
		case types.LicenseTierFull:
			s.FullLicenses++
		case types.LicenseTierEmployeeCenter:
			s.EmployeeCenterLicenses++
		}
		switch row.ComplianceNote {
		case types.ComplianceNoteNonSAML:
			s.NonSAML++
		case types.ComplianceNoteAdmin:
			s.Admins++
		}
		if row.Degraded {
			s.Degraded++
		}
	}
	return s
}

type emailBodyData struct {
	Table          template.HTML
	Summary        model.ReportSummary
	StaleAfterDays int
	JobName        string
	RunID          model.RunID
	GeneratedDate  string
}

// RenderEmailBody wraps the report table into the HTML email body
func RenderEmailBody(report *model.Report, staleAfterDays int, jobName string) (string, error) {
	if staleAfterDays <= 0 {
		staleAfterDays = model.DefaultStaleAfterDays
	}
	if jobName == "" {
		jobName = DefaultJobName
	}

	data := emailBodyData{
		// report.HTML is produced by reportTable, which escapes every cell
		Table:          template.HTML(report.HTML), // #nosec G203
		Summary:        report.Summary,
		StaleAfterDays: staleAfterDays,
		JobName:        jobName,
		RunID:          report.RunID,
		GeneratedDate:  report.GeneratedDate.Format(time.DateOnly),
	}

	var buf bytes.Buffer
	if err := reportEmail.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render email body", goerr.V(RunIDKey, report.RunID))
	}
	return buf.String(), nil
}
