package types

import "strings"

// CenterType represents the role center a host role belongs to
type CenterType string

const (
	CenterTypeEmployee CenterType = "EMPLOYEE"
	CenterTypeFull     CenterType = "FULL"
)

// ParseCenterType normalizes the raw center type reported by the host system.
// Values other than EMPLOYEE are carried verbatim; an empty value is treated as FULL.
func ParseCenterType(s string) CenterType {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return CenterTypeFull
	}
	return CenterType(v)
}

// IsEmployee reports whether the role is restricted to the employee center
func (c CenterType) IsEmployee() bool {
	return c == CenterTypeEmployee
}

// String returns the string representation of the center type
func (c CenterType) String() string {
	return string(c)
}
