package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

func TestFold(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Béziers":          "BEZIERS",
		" Élite Féminine ": "ELITE FEMININE",
		"Pré-Nationale":    "PRE-NATIONALE",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDivisionTable_Standardize(t *testing.T) {
	t.Parallel()

	table := NewDivisionTable(map[string]map[string][]string{
		"Nationale 2": {
			"M": {"Nationale 2 Masculine"},
			"F": {"Nationale 2 Féminine"},
		},
	})

	division, gender := table.Standardize("Nationale 2 Féminine")
	if division != "Nationale 2" || gender == nil || *gender != "F" {
		t.Fatalf("unexpected standardization: %q %v", division, gender)
	}

	division, gender = table.Standardize("  Coupe de France ")
	if division != "Coupe de France" || gender != nil {
		t.Fatalf("expected trimmed passthrough without gender, got %q %v", division, gender)
	}
}

func TestLoadDivisionTable_MissingFileIsSoft(t *testing.T) {
	t.Parallel()

	table := LoadDivisionTable(filepath.Join(t.TempDir(), "missing.json5"), logging.NewNop())
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d labels", table.Len())
	}
	if division, gender := table.Standardize("N2M"); division != "N2M" || gender != nil {
		t.Fatalf("expected passthrough, got %q %v", division, gender)
	}
}

func TestLoadDivisionTable_JSON5(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "divisions.json5")
	content := `{
  // comments and trailing commas are allowed
  "Elite": { "M": ["Elite Masculine",], },
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table := LoadDivisionTable(path, logging.NewNop())
	division, gender := table.Standardize("Elite Masculine")
	if division != "Elite" || gender == nil || *gender != "M" {
		t.Fatalf("unexpected standardization: %q %v", division, gender)
	}
}

func TestAliasTable_FullName(t *testing.T) {
	t.Parallel()

	table := NewAliasTable(AliasFile{Teams: []AliasEntry{
		{Full: "BEZIERS VOLLEY", Aliases: []string{"Béziers", "Beziers Angels"}, Gender: "F"},
		{Full: "TOURS VOLLEY-BALL", Aliases: []string{"Tours", "TVB"}, Gender: "M"},
	}}, 0, logging.NewNop())

	if got, ok := table.FullName("BEZIERS", "F"); !ok || got != "BEZIERS VOLLEY" {
		t.Fatalf("expected accent-insensitive match, got %q %v", got, ok)
	}
	if _, ok := table.FullName("Tours", "F"); ok {
		t.Fatalf("expected no match across genders")
	}
	if got, ok := table.FullName("Beziers Angel", "F"); !ok || got != "BEZIERS VOLLEY" {
		t.Fatalf("expected approximate match, got %q %v", got, ok)
	}
	if _, ok := table.FullName("Cannes", "M"); ok {
		t.Fatalf("expected unrelated name to stay unresolved")
	}
}
