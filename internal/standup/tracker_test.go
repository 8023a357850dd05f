package standup

import (
	"testing"
	"time"
)

func TestTrackerRecordsAndReports(t *testing.T) {
	tr := NewTracker("03/04/2025")

	if tr.Day() != "03/04/2025" {
		t.Fatalf("Day = %q", tr.Day())
	}
	if tr.HasResponded("alice") {
		t.Fatal("fresh tracker must be empty")
	}

	at := time.Date(2025, time.March, 4, 9, 15, 0, 0, time.UTC)
	tr.Record("alice", at, "first update")

	if !tr.HasResponded("alice") {
		t.Fatal("expected alice recorded")
	}
	r, ok := tr.Response("alice")
	if !ok || r.Content != "first update" || !r.Timestamp.Equal(at) {
		t.Fatalf("unexpected response: %+v", r)
	}
	if tr.Count() != 1 {
		t.Fatalf("Count = %d, want 1", tr.Count())
	}
}

func TestTrackerLastWriteWins(t *testing.T) {
	tr := NewTracker("03/04/2025")
	first := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	tr.Record("alice", first, "draft")
	tr.Record("alice", second, "final")

	r, _ := tr.Response("alice")
	if r.Content != "final" || !r.Timestamp.Equal(second) {
		t.Fatalf("expected later update to win, got %+v", r)
	}
	if tr.Count() != 1 {
		t.Fatalf("Count = %d, want 1", tr.Count())
	}
}

func TestTrackerMissingPreservesRosterOrder(t *testing.T) {
	tr := NewTracker("03/04/2025")
	roster := []string{"alice", "bob", "carol"}

	tr.Record("bob", time.Now(), "here")

	missing := tr.Missing(roster)
	if len(missing) != 2 || missing[0] != "alice" || missing[1] != "carol" {
		t.Fatalf("Missing = %v, want [alice carol]", missing)
	}

	// Off-roster responses do not change the missing list.
	tr.Record("stranger", time.Now(), "hi")
	if got := tr.Missing(roster); len(got) != 2 {
		t.Fatalf("Missing = %v after off-roster response", got)
	}
}

func TestTrackerResetStartsNewDay(t *testing.T) {
	tr := NewTracker("03/04/2025")
	tr.Record("alice", time.Now(), "update")

	tr.Reset("03/05/2025")

	if tr.Day() != "03/05/2025" {
		t.Fatalf("Day = %q after reset", tr.Day())
	}
	if tr.Count() != 0 || tr.HasResponded("alice") {
		t.Fatal("reset must clear all responses")
	}
}

func TestTrackerResponsesIsACopy(t *testing.T) {
	tr := NewTracker("03/04/2025")
	tr.Record("alice", time.Now(), "update")

	snapshot := tr.Responses()
	delete(snapshot, "alice")

	if !tr.HasResponded("alice") {
		t.Fatal("mutating the snapshot must not affect the tracker")
	}
}
