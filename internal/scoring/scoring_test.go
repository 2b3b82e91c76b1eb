package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestRawPoints(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		workout Workout
		want    float64
	}{
		{
			name:    "running minutes full units",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
			workout: Workout{ActivityType: "Running", Duration: 45},
			want:    4,
		},
		{
			name:    "cycling kilometers",
			rule:    Rule{ActivityType: "Cycling", Unit: UnitKilometre, PointsPerUnit: 2, UnitsPerPoint: 1},
			workout: Workout{ActivityType: "Cycling", Distance: 3.5},
			want:    6,
		},
		{
			name:    "partial unit floors to previous",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
			workout: Workout{ActivityType: "Running", Duration: 25},
			want:    2,
		},
		{
			name:    "just under one unit yields zero",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
			workout: Workout{ActivityType: "Running", Duration: 9.9},
			want:    0,
		},
		{
			name:    "hours derived from duration minutes",
			rule:    Rule{ActivityType: "Hiking", Unit: UnitHour, PointsPerUnit: 5, UnitsPerPoint: 1},
			workout: Workout{ActivityType: "Hiking", Duration: 150},
			want:    10,
		},
		{
			name:    "calories",
			rule:    Rule{ActivityType: "HIIT", Unit: UnitCalorie, PointsPerUnit: 1, UnitsPerPoint: 100},
			workout: Workout{ActivityType: "HIIT", Calories: 450},
			want:    4,
		},
		{
			name:    "session counts as one regardless of metrics",
			rule:    Rule{ActivityType: "Yoga", Unit: UnitSession, PointsPerUnit: 3, UnitsPerPoint: 1},
			workout: Workout{ActivityType: "Yoga", Duration: 90, Distance: 12},
			want:    3,
		},
		{
			name:    "class counts as one",
			rule:    Rule{ActivityType: "Spin", Unit: UnitClass, PointsPerUnit: 2, UnitsPerPoint: 1},
			workout: Workout{ActivityType: "Spin", Duration: 45},
			want:    2,
		},
		{
			name:    "custom unit reads distance",
			rule:    Rule{ActivityType: "Climbing", Unit: "Pitch", PointsPerUnit: 1, UnitsPerPoint: 2},
			workout: Workout{ActivityType: "Climbing", Distance: 7},
			want:    3,
		},
		{
			name:    "fractional points per unit",
			rule:    Rule{ActivityType: "Walking", Unit: UnitStep, PointsPerUnit: 0.5, UnitsPerPoint: 1000},
			workout: Workout{ActivityType: "Walking", Distance: 4500},
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RawPoints(tt.rule, tt.workout)
			if err != nil {
				t.Fatalf("RawPoints returned error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RawPoints = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRawPointsActivityMismatch(t *testing.T) {
	rule := Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10}
	workout := Workout{ActivityType: "Cycling", Duration: 45}

	_, err := RawPoints(rule, workout)
	if !errors.Is(err, ErrActivityMismatch) {
		t.Fatalf("expected ErrActivityMismatch, got %v", err)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			name: "valid rule",
			rule: Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
		},
		{
			name:    "zero units per point",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 0},
			wantErr: true,
		},
		{
			name:    "negative units per point",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: -5},
			wantErr: true,
		},
		{
			name:    "negative points per unit",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: -1, UnitsPerPoint: 10},
			wantErr: true,
		},
		{
			name:    "empty activity type",
			rule:    Rule{ActivityType: "", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidRule) {
				t.Errorf("expected ErrInvalidRule, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestComputePoints(t *testing.T) {
	rule := Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10}
	cap10 := 10.0

	tests := []struct {
		name       string
		workout    Workout
		priorToday float64
		dailyCap   *float64
		want       float64
	}{
		{
			name:    "no cap passes raw through",
			workout: Workout{ActivityType: "Running", Duration: 50},
			want:    5,
		},
		{
			name:     "under cap unchanged",
			workout:  Workout{ActivityType: "Running", Duration: 50},
			dailyCap: &cap10,
			want:     5,
		},
		{
			name:       "clamped to remaining headroom",
			workout:    Workout{ActivityType: "Running", Duration: 50},
			priorToday: 8,
			dailyCap:   &cap10,
			want:       2,
		},
		{
			name:       "cap already exhausted",
			workout:    Workout{ActivityType: "Running", Duration: 50},
			priorToday: 10,
			dailyCap:   &cap10,
			want:       0,
		},
		{
			name:       "prior over cap never goes negative",
			workout:    Workout{ActivityType: "Running", Duration: 50},
			priorToday: 14,
			dailyCap:   &cap10,
			want:       0,
		},
		{
			name:       "exactly fills remaining cap",
			workout:    Workout{ActivityType: "Running", Duration: 30},
			priorToday: 7,
			dailyCap:   &cap10,
			want:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePoints(rule, tt.workout, tt.priorToday, tt.dailyCap)
			if err != nil {
				t.Fatalf("ComputePoints returned error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputePoints = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputePointsNeverNegative(t *testing.T) {
	cap10 := 10.0

	tests := []struct {
		name       string
		rule       Rule
		workout    Workout
		priorToday float64
		dailyCap   *float64
	}{
		{
			name:    "negative distance uncapped",
			rule:    Rule{ActivityType: "Cycling", Unit: UnitKilometre, PointsPerUnit: 2, UnitsPerPoint: 1},
			workout: Workout{ActivityType: "Cycling", Distance: -5},
		},
		{
			name:     "negative distance capped",
			rule:     Rule{ActivityType: "Cycling", Unit: UnitKilometre, PointsPerUnit: 2, UnitsPerPoint: 1},
			workout:  Workout{ActivityType: "Cycling", Distance: -5},
			dailyCap: &cap10,
		},
		{
			name:    "negative duration uncapped",
			rule:    Rule{ActivityType: "Running", Unit: UnitMinute, PointsPerUnit: 1, UnitsPerPoint: 10},
			workout: Workout{ActivityType: "Running", Duration: -45},
		},
		{
			name:       "negative calories with prior over cap",
			rule:       Rule{ActivityType: "HIIT", Unit: UnitCalorie, PointsPerUnit: 1, UnitsPerPoint: 100},
			workout:    Workout{ActivityType: "HIIT", Calories: -300},
			priorToday: 14,
			dailyCap:   &cap10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputePoints(tt.rule, tt.workout, tt.priorToday, tt.dailyCap)
			if err != nil {
				t.Fatalf("ComputePoints returned error: %v", err)
			}
			if got != 0 {
				t.Errorf("ComputePoints = %v, want 0 for negative quantity", got)
			}
		})
	}
}

func TestValue(t *testing.T) {
	w := Workout{ActivityType: "Swim", Duration: 120, Distance: 2.5, Calories: 600}

	tests := []struct {
		unit Unit
		want float64
	}{
		{UnitHour, 2},
		{UnitMinute, 120},
		{UnitCalorie, 600},
		{UnitSession, 1},
		{UnitClass, 1},
		{UnitKilometre, 2.5},
		{UnitMile, 2.5},
		{Unit("Lap"), 2.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			if got := Value(tt.unit, w); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Value(%s) = %v, want %v", tt.unit, got, tt.want)
			}
		})
	}
}
