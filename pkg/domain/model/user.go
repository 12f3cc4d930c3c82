package model

import (
	"cmp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UserID is the stable identifier of an account in the host system
type UserID string

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}

// CompareUserID orders IDs numerically when both are integers, which is how
// the host assigns internal IDs, and lexically otherwise.
func CompareUserID(a, b UserID) int {
	ai, aErr := strconv.ParseInt(string(a), 10, 64)
	bi, bErr := strconv.ParseInt(string(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// UserCandidate is one account eligible for evaluation, as enumerated by the directory
type UserCandidate struct {
	ID        UserID
	FirstName string
	LastName  string
	Email     string
}

// DisplayName returns the normalized "First Last" name. It returns false when
// either part is empty after trimming.
func (x *UserCandidate) DisplayName() (string, bool) {
	return NormalizeDisplayName(x.FirstName, x.LastName)
}

// NormalizeDisplayName joins first and last name, removing the comma and
// semicolon delimiters and collapsing whitespace.
func NormalizeDisplayName(first, last string) (string, bool) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" {
		return "", false
	}

	name := norm.NFC.String(first + " " + last)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ',', ';':
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", false
	}
	return name, true
}
