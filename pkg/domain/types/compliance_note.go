package types

// ComplianceNote represents the SSO policy verdict for a user
type ComplianceNote string

const (
	ComplianceNoteNone    ComplianceNote = ""
	ComplianceNoteNonSAML ComplianceNote = "Non-SAML"
	ComplianceNoteAdmin   ComplianceNote = "Admin"
)

// IsNone returns true if no compliance note applies
func (c ComplianceNote) IsNone() bool {
	return c == ComplianceNoteNone
}

// String returns the string representation of the compliance note
func (c ComplianceNote) String() string {
	return string(c)
}
