package model

import (
	"strings"
	"time"
)

// NotAvailable is rendered in place of an absent timestamp
const NotAvailable = "Not Available"

// TimestampSignal is either absent or a present instant. Malformed source values
// never reach date arithmetic; they are normalized to absent by ParseSignal.
type TimestampSignal struct {
	at      time.Time
	present bool
}

// Absent returns a signal carrying no timestamp
func Absent() TimestampSignal {
	return TimestampSignal{}
}

// Present returns a signal for t. A zero time is treated as absent.
func Present(t time.Time) TimestampSignal {
	if t.IsZero() {
		return Absent()
	}
	return TimestampSignal{at: t, present: true}
}

// absentTokens are sentinel strings the host system emits instead of a date
var absentTokens = map[string]struct{}{
	"":              {},
	"null":          {},
	"undefined":     {},
	"nan":           {},
	"invalid date":  {},
	"not available": {},
}

// signalLayouts lists the accepted layouts. Slash separated dates are day first,
// which is how the host system renders them.
var signalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04 pm",
	"2/1/2006 3:04 PM",
	"2/1/2006",
}

// ParseSignal converts a raw host value into a signal. Empty, sentinel and
// unparsable values become Absent.
func ParseSignal(raw string) TimestampSignal {
	v := strings.TrimSpace(raw)
	if _, ok := absentTokens[strings.ToLower(v)]; ok {
		return Absent()
	}

	for _, layout := range signalLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Present(t)
		}
	}
	return Absent()
}

// IsPresent reports whether the signal carries a timestamp
func (s TimestampSignal) IsPresent() bool {
	return s.present
}

// Time returns the timestamp and whether it is present
func (s TimestampSignal) Time() (time.Time, bool) {
	return s.at, s.present
}

// After reports whether s is present and strictly later than other.
// A present signal is always later than an absent one.
func (s TimestampSignal) After(other TimestampSignal) bool {
	if !s.present {
		return false
	}
	if !other.present {
		return true
	}
	return s.at.After(other.at)
}

// DateString renders the calendar date (YYYY-MM-DD) or NotAvailable
func (s TimestampSignal) DateString() string {
	if !s.present {
		return NotAvailable
	}
	return s.at.Format(time.DateOnly)
}

// String implements fmt.Stringer
func (s TimestampSignal) String() string {
	if !s.present {
		return "absent"
	}
	return s.at.Format(time.RFC3339)
}
