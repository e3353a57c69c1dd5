package match

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/volley-sync/internal/domain/changeset"
)

func sampleMatch() Match {
	kickoff := time.Date(2025, 1, 18, 19, 0, 0, 0, time.UTC)
	return Match{
		ID:         12,
		MatchCode:  "MSL012",
		LeagueCode: "AALNV",
		PoolID:     3,
		TeamIDA:    10,
		TeamIDB:    11,
		MatchDate:  &kickoff,
		Status:     StatusUpcoming,
		Venue:      changeset.Ptr("Salle Coubertin"),
		Active:     true,
	}
}

func TestDiff_SkipMatchDate(t *testing.T) {
	t.Parallel()

	existing := sampleMatch()
	candidate := existing
	moved := existing.MatchDate.Add(2 * time.Hour)
	candidate.MatchDate = &moved
	candidate.Score = changeset.Ptr("25-20,25-18,25-22")

	all := Diff(existing, candidate, DiffOptions{}).Fields()
	if diff := cmp.Diff([]string{FieldMatchDate, "score"}, all); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}

	skipped := Diff(existing, candidate, DiffOptions{SkipMatchDate: true}).Fields()
	if diff := cmp.Diff([]string{"score"}, skipped); diff != "" {
		t.Fatalf("unexpected fields with date skipped (-want +got):\n%s", diff)
	}
}

func TestStatusForAndNormalizeSet(t *testing.T) {
	t.Parallel()

	set := NormalizeSet(" 3/1 ")
	if set == nil || *set != "3-1" {
		t.Fatalf("unexpected normalized set: %v", set)
	}
	if NormalizeSet("  ") != nil {
		t.Fatalf("expected nil for blank set")
	}
	if got := StatusFor(set, changeset.Ptr("25-20")); got != StatusFinished {
		t.Fatalf("expected FINISHED, got %s", got)
	}
	if got := StatusFor(set, nil); got != StatusUpcoming {
		t.Fatalf("expected UPCOMING, got %s", got)
	}
}

func TestDiff_IgnoresPoolID(t *testing.T) {
	t.Parallel()

	existing := sampleMatch()
	candidate := existing
	candidate.PoolID = 9
	candidate.Referee1 = changeset.Ptr("DUPONT Marc")

	if diff := cmp.Diff([]string{"referee1"}, Diff(existing, candidate, DiffOptions{}).Fields()); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
	for _, field := range MutableFields {
		if field == "pool_id" {
			t.Fatalf("pool_id must not be mutable")
		}
	}
}
