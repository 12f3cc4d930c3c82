package types

// SignalSource identifies which timestamp decided a staleness verdict
type SignalSource string

const (
	SignalSourceNone         SignalSource = "none"
	SignalSourceProvisioning SignalSource = "provisioning"
	SignalSourceLogin        SignalSource = "login"
)

// String returns the string representation of the signal source
func (s SignalSource) String() string {
	return string(s)
}
