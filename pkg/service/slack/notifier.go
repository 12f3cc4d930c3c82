package slack

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/slack-go/slack"
)

const (
	// DefaultMaxListedUsers is the number of removal candidates listed in the message
	DefaultMaxListedUsers = 10

	// maxSectionTextBytes is the Slack limit for a section block text
	maxSectionTextBytes = 3000
)

// Notifier posts a report summary to a Slack channel
type Notifier struct {
	svc       Service
	channelID string
	maxListed int
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithMaxListedUsers limits how many removal candidates are listed
func WithMaxListedUsers(n int) NotifierOption {
	return func(x *Notifier) {
		x.maxListed = n
	}
}

// NewNotifier creates a Notifier posting to channelID
func NewNotifier(svc Service, channelID string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		svc:       svc,
		channelID: channelID,
		maxListed: DefaultMaxListedUsers,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the notifier name used in logs
func (x *Notifier) Name() string {
	return "slack"
}

// Notify posts the summary of the attached report
func (x *Notifier) Notify(ctx context.Context, n *model.Notification) error {
	if n.Report == nil {
		return goerr.New("notification has no report", goerr.V("channel_id", x.channelID))
	}

	blocks, text := x.buildBlocks(n)
	if _, err := x.svc.PostMessage(ctx, x.channelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to post report summary", goerr.V("channel_id", x.channelID))
	}
	return nil
}

func (x *Notifier) buildBlocks(n *model.Notification) ([]slack.Block, string) {
	report := n.Report
	s := report.Summary
	date := report.GeneratedDate.Format("2006-01-02")

	title := fmt.Sprintf("%s %s", n.Subject, date)
	text := fmt.Sprintf("%s: %d active users, %d flagged for removal", title, s.TotalUsers, s.RemovalCandidates)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%d* active users, *%d* flagged for removal", s.TotalUsers, s.RemovalCandidates),
				false, false),
			[]*slack.TextBlockObject{
				field("Full", s.FullLicenses),
				field("Employee Center", s.EmployeeCenterLicenses),
				field("Non-SAML", s.NonSAML),
				field("Admin", s.Admins),
				field("Degraded", s.Degraded),
				field("Excluded", s.Dropped),
			},
			nil,
		),
	}

	if listing := x.removalListing(report.Rows); listing != "" {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, listing, false, false), nil, nil),
		)
	}

	var refs []string
	if len(n.Attachments) > 0 && n.Attachments[0].ArtifactID != "" {
		refs = append(refs, fmt.Sprintf("Artifact: `%s`", n.Attachments[0].ArtifactID))
	}
	if report.RunID != "" {
		refs = append(refs, fmt.Sprintf("Run: `%s`", report.RunID))
	}
	if len(refs) > 0 {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(refs, " | "), false, false)))
	}

	return blocks, text
}

func (x *Notifier) removalListing(rows []model.ReportRow) string {
	var lines []string
	total := 0
	for _, row := range rows {
		if !row.RemovalRecommended {
			continue
		}
		total++
		if len(lines) < x.maxListed {
			lines = append(lines, fmt.Sprintf("• %s (%d days)", row.DisplayName, row.DaysInactive))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	if rest := total - len(lines); rest > 0 {
		lines = append(lines, fmt.Sprintf("…and %d more", rest))
	}
	return truncateToMaxBytes(strings.Join(lines, "\n"), maxSectionTextBytes)
}

func field(label string, count int) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%d", label, count), false, false)
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
