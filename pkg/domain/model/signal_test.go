package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		present bool
		want    time.Time
	}{
		{"empty", "", false, time.Time{}},
		{"whitespace", "   ", false, time.Time{}},
		{"null literal", "null", false, time.Time{}},
		{"undefined literal", "undefined", false, time.Time{}},
		{"NaN literal", "NaN", false, time.Time{}},
		{"invalid date literal", "Invalid Date", false, time.Time{}},
		{"garbage", "yesterday-ish", false, time.Time{}},
		{"impossible date", "31/02/2024", false, time.Time{}},
		{"iso date", "2024-03-05", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-03-05T10:20:30Z", true, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)},
		{"sql timestamp", "2024-03-05 10:20:30", true, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)},
		{"day first", "05/03/2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"day first short", "5/3/2024", true, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"day first with clock", "5/3/2024 1:07 pm", true, time.Date(2024, 3, 5, 13, 7, 0, 0, time.UTC)},
		{"day first with upper clock", "5/3/2024 1:07 PM", true, time.Date(2024, 3, 5, 13, 7, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.ParseSignal(tt.raw)
			gt.Value(t, got.IsPresent()).Equal(tt.present)

			at, ok := got.Time()
			gt.Value(t, ok).Equal(tt.present)
			if tt.present {
				gt.Bool(t, at.Equal(tt.want)).True()
			}
		})
	}
}

func TestPresent_ZeroTimeIsAbsent(t *testing.T) {
	gt.Bool(t, model.Present(time.Time{}).IsPresent()).False()
}

func TestTimestampSignal_After(t *testing.T) {
	older := model.Present(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := model.Present(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	gt.Bool(t, newer.After(older)).True()
	gt.Bool(t, older.After(newer)).False()
	gt.Bool(t, older.After(older)).False()
	gt.Bool(t, older.After(model.Absent())).True()
	gt.Bool(t, model.Absent().After(older)).False()
	gt.Bool(t, model.Absent().After(model.Absent())).False()
}

func TestTimestampSignal_DateString(t *testing.T) {
	gt.Value(t, model.Absent().DateString()).Equal(model.NotAvailable)
	gt.Value(t, model.ParseSignal("2024-03-05T23:59:00Z").DateString()).Equal("2024-03-05")
}
