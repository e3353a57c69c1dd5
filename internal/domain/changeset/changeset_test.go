package changeset

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuilder_TimeComparesAtSecondGranularity(t *testing.T) {
	t.Parallel()

	paris := time.FixedZone("CET", 3600)
	stored := time.Date(2025, 1, 18, 20, 0, 0, 0, time.UTC)
	observed := time.Date(2025, 1, 18, 21, 0, 0, 400_000_000, paris)

	var b Builder
	b.Time("match_date", &stored, &observed)
	if changes := b.Changes(); !changes.Empty() {
		t.Fatalf("expected no change for same instant, got %v", changes.Strings())
	}

	later := stored.Add(time.Minute)
	b.Time("match_date", &stored, &later)
	if got := b.Changes().Fields(); !cmp.Equal(got, []string{"match_date"}) {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestBuilder_OptionalStringTreatsBlankAsNil(t *testing.T) {
	t.Parallel()

	var b Builder
	b.OptionalString("venue", nil, Ptr(""))
	b.OptionalString("referee1", Ptr("DUPONT"), nil)

	want := List{{Field: "referee1", From: "DUPONT", To: ""}}
	if diff := cmp.Diff(want, b.Changes()); diff != "" {
		t.Fatalf("unexpected changes (-want +got):\n%s", diff)
	}
}

func TestChange_String(t *testing.T) {
	t.Parallel()

	if got := Reactivation().String(); got != "active: 'false' -> 'true'" {
		t.Fatalf("unexpected reactivation rendering: %q", got)
	}
	c := Change{Field: "club_id", From: "0751234", To: "0759999"}
	if got := c.String(); got != "club_id: '0751234' -> '0759999'" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
