package types

// LicenseTier represents the coarse license class derived from all roles held by a user
type LicenseTier string

const (
	LicenseTierFull           LicenseTier = "Full"
	LicenseTierEmployeeCenter LicenseTier = "Employee Center"
)

// IsValid checks if the license tier is valid
func (l LicenseTier) IsValid() bool {
	switch l {
	case LicenseTierFull, LicenseTierEmployeeCenter:
		return true
	default:
		return false
	}
}

// String returns the string representation of the license tier
func (l LicenseTier) String() string {
	return string(l)
}
