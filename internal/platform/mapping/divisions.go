package mapping

import (
	"sort"
	"strings"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

type divisionEntry struct {
	division string
	gender   string
}

// DivisionTable maps raw division labels to a canonical division and gender.
type DivisionTable struct {
	byLabel map[string]divisionEntry
}

// NewDivisionTable builds a table from {division: {gender: [labels]}}.
func NewDivisionTable(raw map[string]map[string][]string) *DivisionTable {
	table := &DivisionTable{byLabel: make(map[string]divisionEntry)}

	divisions := make([]string, 0, len(raw))
	for division := range raw {
		divisions = append(divisions, division)
	}
	sort.Strings(divisions)

	for _, division := range divisions {
		genders := make([]string, 0, len(raw[division]))
		for gender := range raw[division] {
			genders = append(genders, gender)
		}
		sort.Strings(genders)
		for _, gender := range genders {
			for _, label := range raw[division][gender] {
				if _, taken := table.byLabel[label]; taken {
					continue
				}
				table.byLabel[label] = divisionEntry{division: division, gender: gender}
			}
		}
	}
	return table
}

// LoadDivisionTable reads a JSON5 file; a missing or broken file yields an empty table.
func LoadDivisionTable(path string, logger *logging.Logger) *DivisionTable {
	var raw map[string]map[string][]string
	loadSoft(path, "division standardization", &raw, logger)
	return NewDivisionTable(raw)
}

func (t *DivisionTable) Standardize(raw string) (string, *string) {
	if t != nil {
		if entry, ok := t.byLabel[raw]; ok {
			gender := entry.gender
			return entry.division, &gender
		}
	}
	return strings.TrimSpace(raw), nil
}

func (t *DivisionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byLabel)
}
