package scoring

import (
	"errors"
	"math"
)

// Unit is the measurement unit a rule awards points against. The twelve
// named units match the options offered in the competition creation form;
// anything else is a custom user-entered label and is read from the
// distance/count field.
type Unit string

const (
	UnitMinute    Unit = "Minute"
	UnitHour      Unit = "Hour"
	UnitKilometre Unit = "Kilometre"
	UnitMile      Unit = "Mile"
	UnitMeter     Unit = "Meter"
	UnitYard      Unit = "Yard"
	UnitStep      Unit = "Step"
	UnitRep       Unit = "Rep"
	UnitSet       Unit = "Set"
	UnitCalorie   Unit = "Calorie"
	UnitSession   Unit = "Session"
	UnitClass     Unit = "Class"
)

var (
	// ErrInvalidRule means the rule carries a non-positive threshold or
	// points value, or no activity type. Competition creation rejects these,
	// so hitting this at scoring time is a data-integrity bug, not a user
	// error.
	ErrInvalidRule = errors.New("scoring: rule has empty activity type or non-positive pointsPerUnit or unitsPerPoint")

	// ErrActivityMismatch means the caller looked up the wrong rule for the
	// workout's activity type.
	ErrActivityMismatch = errors.New("scoring: rule activity type does not match workout")
)

// Rule is one scoring configuration inside a competition: how many points
// one threshold of the unit is worth, and how big that threshold is.
// "10 minutes = 1 point" is {Unit: Minute, PointsPerUnit: 1, UnitsPerPoint: 10}.
type Rule struct {
	ActivityType  string  `json:"activityType" db:"activity_type"`
	Unit          Unit    `json:"unit" db:"unit"`
	PointsPerUnit float64 `json:"pointsPerUnit" db:"points_per_unit"`
	UnitsPerPoint float64 `json:"unitsPerPoint" db:"units_per_point"`
}

// Validate applies the creation-time invariants: an activity type is named
// and both numbers are strictly positive.
func (r Rule) Validate() error {
	if r.ActivityType == "" || r.PointsPerUnit <= 0 || r.UnitsPerPoint <= 0 {
		return ErrInvalidRule
	}
	return nil
}

// Workout carries the raw measured quantities of one logged workout. Only the
// field matching the rule's unit is meaningful; the rest are ignored.
type Workout struct {
	ActivityType string
	Duration     float64 // minutes
	Distance     float64 // distance or count, interpreted by the rule's unit
	Calories     float64
}

// Value selects the raw quantity the unit measures.
func Value(u Unit, w Workout) float64 {
	switch u {
	case UnitHour:
		return w.Duration / 60
	case UnitMinute:
		return w.Duration
	case UnitCalorie:
		return w.Calories
	case UnitSession, UnitClass:
		// One submission counts as one session, whatever else was logged.
		return 1
	default:
		// Kilometre, Mile, Meter, Yard, Step, Rep, Set and custom units all
		// read the distance/count field.
		return w.Distance
	}
}

// RawPoints is the uncapped award: floor(value / unitsPerPoint) * pointsPerUnit.
// Partial thresholds earn nothing, so 25 minutes at "10 min = 1 point" is 2
// points, not 2.5.
func RawPoints(rule Rule, w Workout) (float64, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}
	if rule.ActivityType != w.ActivityType {
		return 0, ErrActivityMismatch
	}
	return math.Floor(Value(rule.Unit, w)/rule.UnitsPerPoint) * rule.PointsPerUnit, nil
}

// ComputePoints awards points for one workout under an optional daily cap.
// priorPointsToday is the sum already awarded to this user, in this
// competition, for the workout's calendar day; the caller supplies it, the
// engine never queries storage. With a cap the award is truncated to the
// remaining headroom (never rejected): an exhausted cap yields 0. The award
// is never negative, so a negative logged quantity floors to 0 instead of
// draining the user's total.
func ComputePoints(rule Rule, w Workout, priorPointsToday float64, dailyCap *float64) (float64, error) {
	raw, err := RawPoints(rule, w)
	if err != nil {
		return 0, err
	}
	award := raw
	if dailyCap != nil {
		award = math.Min(award, *dailyCap-priorPointsToday)
	}
	return math.Max(0, award), nil
}
