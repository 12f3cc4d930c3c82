package model

// DefaultReplyTo is used when no reply-to address is configured
const DefaultReplyTo = "donotreply@donotreply.com"

// Attachment is a stored artifact attached to a notification
type Attachment struct {
	ArtifactID ArtifactID
	Name       string
	MimeType   string
	Data       []byte
}

// Notification is the summary delivered after a report is stored
type Notification struct {
	Author      string
	Recipients  []string
	ReplyTo     string
	Subject     string
	HTMLBody    string
	Attachments []Attachment

	// Report is attached for notifiers that render their own summary
	Report *Report
}
