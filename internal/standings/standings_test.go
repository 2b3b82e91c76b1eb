package standings

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func namesOf(names map[uuid.UUID]string) func(uuid.UUID) (string, bool) {
	return func(id uuid.UUID) (string, bool) {
		name, ok := names[id]
		return name, ok
	}
}

func TestRankOrdersByTotalDescending(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	roster := []uuid.UUID{alice, bob, carol}
	subs := []ScoredSubmission{
		{UserID: alice, Points: 15},
		{UserID: alice, Points: 25},
		{UserID: bob, Points: 43},
		{UserID: carol, Points: 38},
	}
	names := map[uuid.UUID]string{alice: "alice", bob: "bob", carol: "carol"}

	got := Rank(roster, subs, namesOf(names))

	if len(got) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(got))
	}

	want := []struct {
		id     uuid.UUID
		points float64
		rank   int
	}{
		{bob, 43, 1},
		{alice, 40, 2},
		{carol, 38, 3},
	}
	for i, w := range want {
		if got[i].UserID != w.id {
			t.Errorf("position %d: expected user %s, got %s", i, w.id, got[i].UserID)
		}
		if math.Abs(got[i].TotalPoints-w.points) > 1e-9 {
			t.Errorf("position %d: expected %v points, got %v", i, w.points, got[i].TotalPoints)
		}
		if got[i].Rank != w.rank {
			t.Errorf("position %d: expected rank %d, got %d", i, w.rank, got[i].Rank)
		}
	}
}

func TestRankIncludesZeroSubmissionParticipants(t *testing.T) {
	active := uuid.New()
	idle := uuid.New()

	got := Rank(
		[]uuid.UUID{active, idle},
		[]ScoredSubmission{{UserID: active, Points: 12}},
		namesOf(map[uuid.UUID]string{active: "active", idle: "idle"}),
	)

	if len(got) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(got))
	}
	if got[1].UserID != idle {
		t.Fatalf("expected idle participant last, got %s", got[1].DisplayName)
	}
	if got[1].TotalPoints != 0 {
		t.Errorf("expected 0 points for idle participant, got %v", got[1].TotalPoints)
	}
	if got[1].Rank != 2 {
		t.Errorf("expected rank 2 for idle participant, got %d", got[1].Rank)
	}
}

func TestRankIncludesNonRosterSubmitters(t *testing.T) {
	member := uuid.New()
	stray := uuid.New()

	got := Rank(
		[]uuid.UUID{member},
		[]ScoredSubmission{
			{UserID: member, Points: 5},
			{UserID: stray, Points: 9},
		},
		namesOf(map[uuid.UUID]string{member: "member", stray: "stray"}),
	)

	if len(got) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(got))
	}
	if got[0].UserID != stray {
		t.Errorf("expected stray submitter first with 9 points, got %s", got[0].DisplayName)
	}
}

func TestRankTiesKeepRosterOrder(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	got := Rank(
		[]uuid.UUID{first, second, third},
		[]ScoredSubmission{
			{UserID: second, Points: 10},
			{UserID: first, Points: 10},
			{UserID: third, Points: 10},
		},
		namesOf(map[uuid.UUID]string{first: "first", second: "second", third: "third"}),
	)

	wantOrder := []uuid.UUID{first, second, third}
	for i, id := range wantOrder {
		if got[i].UserID != id {
			t.Errorf("position %d: tie broke roster order, got user %d", i, i)
		}
		if got[i].Rank != i+1 {
			t.Errorf("position %d: expected strict rank %d, got %d", i, i+1, got[i].Rank)
		}
	}
}

func TestRankUnknownUserPlaceholder(t *testing.T) {
	known := uuid.New()
	ghost := uuid.New()

	got := Rank(
		[]uuid.UUID{known, ghost},
		nil,
		namesOf(map[uuid.UUID]string{known: "known"}),
	)

	for _, s := range got {
		if s.UserID == ghost && s.DisplayName != UnknownDisplayName {
			t.Errorf("expected placeholder name for missing profile, got %q", s.DisplayName)
		}
	}
}

func TestRankDeduplicatesRoster(t *testing.T) {
	dup := uuid.New()

	got := Rank(
		[]uuid.UUID{dup, dup},
		[]ScoredSubmission{{UserID: dup, Points: 4}},
		namesOf(map[uuid.UUID]string{dup: "dup"}),
	)

	if len(got) != 1 {
		t.Fatalf("expected 1 standing for duplicated roster entry, got %d", len(got))
	}
	if got[0].TotalPoints != 4 {
		t.Errorf("expected 4 points, got %v", got[0].TotalPoints)
	}
}

func TestRankConservesPoints(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	subs := []ScoredSubmission{
		{UserID: a, Points: 1.5},
		{UserID: a, Points: 2.5},
		{UserID: b, Points: 7},
		{UserID: b, Points: 0},
	}

	got := Rank([]uuid.UUID{a, b}, subs, namesOf(map[uuid.UUID]string{a: "a", b: "b"}))

	var sumIn, sumOut float64
	for _, s := range subs {
		sumIn += s.Points
	}
	for _, s := range got {
		sumOut += s.TotalPoints
	}
	if math.Abs(sumIn-sumOut) > 1e-9 {
		t.Errorf("points not conserved: submitted %v, ranked %v", sumIn, sumOut)
	}
}

func TestRankEmptyInputs(t *testing.T) {
	got := Rank(nil, nil, namesOf(nil))
	if len(got) != 0 {
		t.Fatalf("expected empty standings, got %d rows", len(got))
	}
}
