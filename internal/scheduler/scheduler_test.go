package scheduler

import (
	"errors"
	"testing"

	"github.com/example/wordloop/internal/spaced_repetition"
	"github.com/example/wordloop/pkg/models"
)

var shortTable = spaced_repetition.FromSeconds([]float64{0, 300, 1800})

func newTestScheduler(t *testing.T, records map[string]models.WordRecord) *Scheduler {
	t.Helper()
	if records == nil {
		records = map[string]models.WordRecord{}
	}
	return New(shortTable, records)
}

func mustAdmit(t *testing.T, s *Scheduler, id string, src Source, now models.Timestamp) {
	t.Helper()
	ok, err := s.Admit(id, src, now)
	if err != nil {
		t.Fatalf("Admit(%q): %v", id, err)
	}
	if !ok {
		t.Fatalf("Admit(%q) did not enqueue", id)
	}
}

func mustApply(t *testing.T, s *Scheduler, id string, correct bool, now models.Timestamp) int {
	t.Helper()
	level, err := s.ApplyOutcome(id, correct, now)
	if err != nil {
		t.Fatalf("ApplyOutcome(%q): %v", id, err)
	}
	return level
}

func assertSingleMembership(t *testing.T, s *Scheduler) {
	t.Helper()
	seen := map[string]int{}
	for level, q := range s.Snapshot() {
		for _, e := range q {
			if prev, dup := seen[e.ItemID]; dup {
				t.Fatalf("%q queued at level %d and %d", e.ItemID, prev, level)
			}
			seen[e.ItemID] = level
		}
	}
}

func TestScenarioPromoteThenWait(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 0)

	if level, ok := s.Level("cat"); !ok || level != 0 {
		t.Fatalf("Level = %d, %v; want 0, true", level, ok)
	}
	due, status := s.NextDue(0)
	if status != Ready || due.Entry.ItemID != "cat" {
		t.Fatalf("NextDue(0) = %+v, %v", due, status)
	}

	if level := mustApply(t, s, "cat", true, 0); level != 1 {
		t.Fatalf("level = %d, want 1", level)
	}
	if _, status := s.NextDue(0); status != NoneReady {
		t.Errorf("NextDue(0) status = %v, want none ready", status)
	}
	due, status = s.NextDue(300)
	if status != Ready || due.Entry.ItemID != "cat" || due.Entry.Due != 300 || due.Level != 1 {
		t.Errorf("NextDue(300) = %+v, %v", due, status)
	}
}

func TestScenarioForgetResetsToZero(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 0)
	mustApply(t, s, "cat", true, 0)

	if level := mustApply(t, s, "cat", false, 300); level != 0 {
		t.Fatalf("level = %d, want 0", level)
	}
	due, status := s.NextDue(300)
	if status != Ready || due.Entry.Due != 300 || due.Level != 0 {
		t.Errorf("NextDue(300) = %+v, %v", due, status)
	}
}

func TestScenarioGraduation(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 0)
	mustApply(t, s, "cat", true, 0)
	mustApply(t, s, "cat", true, 300)
	if level := mustApply(t, s, "cat", true, 2100); level != 3 {
		t.Fatalf("level = %d, want 3", level)
	}

	if _, ok := s.Level("cat"); ok {
		t.Error("graduated word is still queued")
	}
	if _, status := s.NextDue(1e9); status != Exhausted {
		t.Errorf("status = %v, want exhausted", status)
	}
	rec, ok := s.Record("cat")
	if !ok {
		t.Fatal("record dropped after graduation")
	}
	if rec.Count != 3 || rec.Correct != 3 || rec.Level != 3 || len(rec.Records) != 3 {
		t.Errorf("record = %+v", rec)
	}
}

func TestForgetFromAnyLevel(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 0)
	mustApply(t, s, "cat", true, 0)
	mustApply(t, s, "cat", true, 300)
	if level := mustApply(t, s, "cat", false, 2100); level != 0 {
		t.Errorf("level = %d, want 0", level)
	}
}

func TestDueTimeFollowsInterval(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 10)
	mustApply(t, s, "cat", true, 42.5)

	snap := s.Snapshot()
	if len(snap[1]) != 1 || snap[1][0].Due != 342.5 {
		t.Errorf("level 1 = %+v, want due 342.5", snap[1])
	}
}

func TestHigherLevelWinsTie(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "low", SourceDictionary, 0)
	mustAdmit(t, s, "high", SourceDictionary, 0)
	// move "high" up while "low" stays at level 0
	if _, err := s.ApplyOutcome("low", false, 0); err != nil {
		t.Fatalf("ApplyOutcome(low): %v", err)
	}
	mustApply(t, s, "high", true, 0)

	due, status := s.NextDue(300)
	if status != Ready || due.Entry.ItemID != "high" || due.Level != 1 {
		t.Errorf("NextDue = %+v, %v; want high at level 1", due, status)
	}
}

func TestFIFOOnEqualDue(t *testing.T) {
	s := newTestScheduler(t, nil)
	for _, id := range []string{"a", "b", "c"} {
		mustAdmit(t, s, id, SourceDictionary, 0)
	}
	var order []string
	for i := 0; i < 3; i++ {
		due, status := s.NextDue(0)
		if status != Ready {
			t.Fatalf("status = %v", status)
		}
		order = append(order, due.Entry.ItemID)
		mustApply(t, s, due.Entry.ItemID, true, 0)
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestApplyOutcomeRejectsNonHead(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "a", SourceDictionary, 0)
	mustAdmit(t, s, "b", SourceDictionary, 0)

	_, err := s.ApplyOutcome("b", true, 0)
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvariantError", err)
	}
	if rec, _ := s.Record("b"); rec.Count != 0 {
		t.Error("rejected outcome changed the record")
	}

	if _, err := s.ApplyOutcome("missing", true, 0); !errors.As(err, &inv) {
		t.Errorf("err = %v, want InvariantError for unknown word", err)
	}
}

func TestAdmitTwiceIsRefused(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "cat", SourceDictionary, 0)
	_, err := s.Admit("cat", SourceDictionary, 5)
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvariantError", err)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending())
	}
}

func TestAdmitKnownWordUsesLastReview(t *testing.T) {
	records := map[string]models.WordRecord{
		"dog": {Level: 2, Count: 2, Correct: 2, Records: []models.ReviewRecord{{At: 100, Correct: true}, {At: 500, Correct: true}}},
	}
	s := newTestScheduler(t, records)
	mustAdmit(t, s, "dog", SourceDictionary, 99999)

	snap := s.Snapshot()
	if len(snap[2]) != 1 || snap[2][0].Due != 2300 {
		t.Errorf("level 2 = %+v, want due 2300", snap[2])
	}
}

func TestAdmitGraduatedWord(t *testing.T) {
	graduated := models.WordRecord{Level: 3, Count: 3, Correct: 3, Records: []models.ReviewRecord{{At: 1}, {At: 2}, {At: 3}}}
	s := newTestScheduler(t, map[string]models.WordRecord{"owl": graduated})

	ok, err := s.Admit("owl", SourceDictionary, 1000)
	if err != nil || ok {
		t.Fatalf("Admit from dictionary = %v, %v; want false, nil", ok, err)
	}

	mustAdmit(t, s, "owl", SourceFavorites, 1000)
	due, status := s.NextDue(1000)
	if status != Ready || due.Level != 2 || due.Entry.Due != 1000 {
		t.Fatalf("NextDue = %+v, %v", due, status)
	}
	if rec, _ := s.Record("owl"); rec.Level != 3 {
		t.Errorf("re-entry changed the record level to %d", rec.Level)
	}
	if level := mustApply(t, s, "owl", true, 1000); level != 3 {
		t.Errorf("level = %d, want 3", level)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestRestoreKeepsDueTimes(t *testing.T) {
	records := map[string]models.WordRecord{
		"a": {Records: []models.ReviewRecord{}},
		"b": {Level: 1, Count: 1, Correct: 1, Records: []models.ReviewRecord{{At: 5, Correct: true}}},
		"c": {Records: []models.ReviewRecord{}},
	}
	saved := [][]models.QueueEntry{
		{{Due: 7, ItemID: "a"}, {Due: 7, ItemID: "c"}},
		{{Due: 777, ItemID: "b"}},
		{},
	}
	s := newTestScheduler(t, records)
	if err := s.Restore(saved); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	snap := s.Snapshot()
	for level := range saved {
		if len(snap[level]) != len(saved[level]) {
			t.Fatalf("level %d = %+v, want %+v", level, snap[level], saved[level])
		}
		for i := range saved[level] {
			if snap[level][i] != saved[level][i] {
				t.Errorf("level %d[%d] = %+v, want %+v", level, i, snap[level][i], saved[level][i])
			}
		}
	}
	assertSingleMembership(t, s)
}

func TestRestoreRejectsDuplicates(t *testing.T) {
	records := map[string]models.WordRecord{"a": {Records: []models.ReviewRecord{}}}
	s := newTestScheduler(t, records)
	err := s.Restore([][]models.QueueEntry{{{Due: 1, ItemID: "a"}}, {{Due: 2, ItemID: "a"}}})
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvariantError", err)
	}
	if s.Pending() != 0 {
		t.Errorf("failed restore left %d entries", s.Pending())
	}
}

func TestRestoreRejectsUnknownWord(t *testing.T) {
	s := newTestScheduler(t, nil)
	if err := s.Restore([][]models.QueueEntry{{{Due: 1, ItemID: "ghost"}}}); err == nil {
		t.Error("expected error for word without a record")
	}
}

func TestSingleMembershipUnderRandomOutcomes(t *testing.T) {
	s := newTestScheduler(t, nil)
	words := []string{"a", "b", "c", "d", "e"}
	for _, w := range words {
		mustAdmit(t, s, w, SourceDictionary, 0)
	}
	now := models.Timestamp(0)
	for step := 0; step < 60; step++ {
		due, status := s.NextDue(now)
		if status == Exhausted {
			break
		}
		if status == NoneReady {
			now += 100
			continue
		}
		mustApply(t, s, due.Entry.ItemID, step%3 != 0, now)
		assertSingleMembership(t, s)
	}
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	s := newTestScheduler(t, nil)
	mustAdmit(t, s, "a", SourceDictionary, 0)
	snap := s.Snapshot()
	snap[0][0].ItemID = "changed"
	if due, _ := s.NextDue(0); due.Entry.ItemID != "a" {
		t.Errorf("Snapshot shares memory with the queue")
	}
}
