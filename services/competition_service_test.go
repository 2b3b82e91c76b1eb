package services

import (
	"testing"
	"time"

	"fitClashAPI/internal/types/competition"
)

func TestWithinWindow(t *testing.T) {
	comp := &competition.Competition{
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
	}

	est := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{
			name: "mid window",
			date: time.Date(2026, 6, 4, 12, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "start day late evening",
			date: time.Date(2026, 6, 1, 23, 59, 59, 0, time.UTC),
			want: true,
		},
		{
			name: "end day afternoon",
			date: time.Date(2026, 6, 7, 18, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "day before start",
			date: time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC),
			want: false,
		},
		{
			name: "day after end",
			date: time.Date(2026, 6, 8, 0, 0, 1, 0, time.UTC),
			want: false,
		},
		{
			name: "offset zone evening maps to next utc day inside window",
			date: time.Date(2026, 6, 6, 22, 0, 0, 0, est),
			want: true,
		},
		{
			name: "offset zone evening maps to utc day past end",
			date: time.Date(2026, 6, 7, 20, 0, 0, 0, est),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinWindow(comp, tt.date); got != tt.want {
				t.Errorf("withinWindow(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestDateOnlyNormalizesToUTCMidnight(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	in := time.Date(2026, 6, 6, 22, 30, 0, 0, est)

	got := dateOnly(in)
	want := time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("dateOnly = %s, want %s", got, want)
	}
}
