package usecase_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
	"github.com/secmon-lab/usersreport/pkg/usecase"
)

func TestClassifyStaleness(t *testing.T) {
	today := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	daysAgo := func(n int) model.TimestampSignal {
		return model.Present(today.AddDate(0, 0, -n))
	}

	tests := []struct {
		name         string
		provisioning model.TimestampSignal
		login        model.TimestampSignal
		wantDays     int
		wantSource   types.SignalSource
		wantDate     string
	}{
		{
			name:         "both absent",
			provisioning: model.Absent(),
			login:        model.Absent(),
			wantDays:     0,
			wantSource:   types.SignalSourceNone,
			wantDate:     model.NotAvailable,
		},
		{
			name:         "provisioning only",
			provisioning: daysAgo(120),
			login:        model.Absent(),
			wantDays:     120,
			wantSource:   types.SignalSourceProvisioning,
			wantDate:     "2024-03-02",
		},
		{
			name:         "login only",
			provisioning: model.Absent(),
			login:        daysAgo(3),
			wantDays:     3,
			wantSource:   types.SignalSourceLogin,
			wantDate:     "2024-06-27",
		},
		{
			name:         "login more recent than provisioning",
			provisioning: daysAgo(30),
			login:        daysAgo(10),
			wantDays:     10,
			wantSource:   types.SignalSourceLogin,
			wantDate:     "2024-06-20",
		},
		{
			name:         "re-provisioned after last login",
			provisioning: daysAgo(2),
			login:        daysAgo(200),
			wantDays:     2,
			wantSource:   types.SignalSourceProvisioning,
			wantDate:     "2024-06-28",
		},
		{
			name:         "tie resolves to login",
			provisioning: daysAgo(7),
			login:        daysAgo(7),
			wantDays:     7,
			wantSource:   types.SignalSourceLogin,
			wantDate:     "2024-06-23",
		},
		{
			name:         "future date from clock skew counts as absolute",
			provisioning: model.Absent(),
			login:        model.Present(today.AddDate(0, 0, 4)),
			wantDays:     4,
			wantSource:   types.SignalSourceLogin,
			wantDate:     "2024-07-04",
		},
		{
			name:         "same calendar day is zero",
			provisioning: model.Absent(),
			login:        model.Present(time.Date(2024, 6, 30, 0, 1, 0, 0, time.UTC)),
			wantDays:     0,
			wantSource:   types.SignalSourceLogin,
			wantDate:     "2024-06-30",
		},
		{
			name:         "parsed sentinel is absent",
			provisioning: model.ParseSignal("Invalid Date"),
			login:        model.ParseSignal("NaN"),
			wantDays:     0,
			wantSource:   types.SignalSourceNone,
			wantDate:     model.NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.ClassifyStaleness(tt.provisioning, tt.login, today)
			gt.Value(t, got.DaysInactive).Equal(tt.wantDays)
			gt.Value(t, got.Source).Equal(tt.wantSource)
			gt.Value(t, got.Authoritative.DateString()).Equal(tt.wantDate)
		})
	}
}

func TestClassifyStaleness_NeverNegative(t *testing.T) {
	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(1, 2))

	signal := func() model.TimestampSignal {
		if rng.IntN(4) == 0 {
			return model.Absent()
		}
		offset := rng.IntN(4000) - 2000
		return model.Present(today.AddDate(0, 0, offset).Add(time.Duration(rng.IntN(86400)) * time.Second))
	}

	for range 500 {
		got := usecase.ClassifyStaleness(signal(), signal(), today)
		if got.DaysInactive < 0 {
			t.Fatalf("negative days inactive: %+v", got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database not available")
	}

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			name: "partial day is floored",
			a:    time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
			want: 9,
		},
		{
			name: "under a day across midnight",
			a:    time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC),
			b:    time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "leap day",
			a:    time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want: 2,
		},
		{
			name: "across DST start counts elapsed time",
			a:    time.Date(2024, 3, 9, 12, 0, 0, 0, newYork),
			b:    time.Date(2024, 3, 11, 13, 0, 0, 0, newYork),
			want: 2,
		},
		{
			name: "locations do not matter",
			a:    time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC),
			b:    time.Date(2024, 4, 30, 22, 0, 0, 0, newYork),
			want: 0,
		},
		{
			name: "fixed offset",
			a:    time.Date(2024, 5, 1, 8, 0, 0, 0, tokyo),
			b:    time.Date(2024, 5, 2, 1, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "reversed",
			a:    time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, usecase.DaysBetween(tt.a, tt.b)).Equal(tt.want)
		})
	}
}

func TestClassifyStaleness_RemovalBoundary(t *testing.T) {
	today := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)
	candidate := &model.UserCandidate{ID: "1", FirstName: "Ada", LastName: "Lovelace"}
	policy := model.PolicyVerdict{LicenseTier: types.LicenseTierFull}

	tests := []struct {
		name        string
		login       time.Time
		wantDays    int
		wantRemoval bool
	}{
		{"90 days and 2 hours", today.Add(-(90*24 + 2) * time.Hour), 90, false},
		{"one minute short of 91 days", today.Add(-91*24*time.Hour + time.Minute), 90, false},
		{"91 days", today.Add(-91 * 24 * time.Hour), 91, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := usecase.ClassifyStaleness(model.Absent(), model.Present(tt.login), today)
			gt.Value(t, verdict.DaysInactive).Equal(tt.wantDays)

			row, ok := usecase.BuildRow(candidate, verdict, policy, model.DefaultStaleAfterDays)
			gt.Bool(t, ok).True()
			gt.Value(t, row.RemovalRecommended).Equal(tt.wantRemoval)
		})
	}
}
