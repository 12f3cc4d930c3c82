package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
		ok    bool
	}{
		{"plain", "John", "Smith", "John Smith", true},
		{"trims parts", "  John ", " Smith  ", "John Smith", true},
		{"strips comma", "John", "Smith,", "John Smith", true},
		{"strips comma inside", "Smith, John", "Jr", "Smith John Jr", true},
		{"strips semicolon", "Jo;hn", "Smith", "John Smith", true},
		{"collapses inner whitespace", "Mary  Ann", "Lee", "Mary Ann Lee", true},
		{"empty first", "", "Smith", "", false},
		{"empty last", "John", "   ", "", false},
		{"both empty", "", "", "", false},
		{"only delimiters", ",", ";", "", false},
		{"nfc normalized", "José", "Garcia", "José Garcia", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := model.NormalizeDisplayName(tt.first, tt.last)
			gt.Value(t, ok).Equal(tt.ok)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestUserCandidate_DisplayName(t *testing.T) {
	user := &model.UserCandidate{ID: "101", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	name, ok := user.DisplayName()
	gt.Bool(t, ok).True()
	gt.Value(t, name).Equal("Ada Lovelace")
}

func TestCompareUserID(t *testing.T) {
	tests := []struct {
		name string
		a, b model.UserID
		want int
	}{
		{"numeric order", "9", "10", -1},
		{"numeric equal", "42", "42", 0},
		{"numeric before text", "100", "abc", -1},
		{"text after numeric", "abc", "7", 1},
		{"lexical text", "alice", "bob", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.CompareUserID(tt.a, tt.b)).Equal(tt.want)
		})
	}
}
