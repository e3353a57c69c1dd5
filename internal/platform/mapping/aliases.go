package mapping

import (
	"github.com/antzucaro/matchr"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

const defaultFuzzyThreshold = 0.93

type AliasFile struct {
	Teams []AliasEntry `json:"teams"`
}

type AliasEntry struct {
	Full    string   `json:"full"`
	Aliases []string `json:"aliases"`
	Gender  string   `json:"gender"`
}

type aliasCandidate struct {
	folded string
	full   string
}

// AliasTable resolves short team labels to full team names per gender.
type AliasTable struct {
	exact     map[string]map[string]string
	byGender  map[string][]aliasCandidate
	threshold float64
	logger    *logging.Logger
}

func NewAliasTable(file AliasFile, threshold float64, logger *logging.Logger) *AliasTable {
	if logger == nil {
		logger = logging.Default()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = defaultFuzzyThreshold
	}
	table := &AliasTable{
		exact:     make(map[string]map[string]string),
		byGender:  make(map[string][]aliasCandidate),
		threshold: threshold,
		logger:    logger,
	}
	for _, entry := range file.Teams {
		if entry.Full == "" {
			continue
		}
		labels := append([]string{entry.Full}, entry.Aliases...)
		for _, label := range labels {
			folded := Fold(label)
			if folded == "" {
				continue
			}
			if table.exact[entry.Gender] == nil {
				table.exact[entry.Gender] = make(map[string]string)
			}
			if _, taken := table.exact[entry.Gender][folded]; !taken {
				table.exact[entry.Gender][folded] = entry.Full
			}
			table.byGender[entry.Gender] = append(table.byGender[entry.Gender], aliasCandidate{folded: folded, full: entry.Full})
		}
	}
	return table
}

// LoadAliasTable reads a JSON5 file; a missing or broken file yields an empty table.
func LoadAliasTable(path string, threshold float64, logger *logging.Logger) *AliasTable {
	var file AliasFile
	loadSoft(path, "team aliases", &file, logger)
	return NewAliasTable(file, threshold, logger)
}

// FullName matches accent-insensitively, then falls back to the closest Jaro-Winkler label.
func (t *AliasTable) FullName(name, gender string) (string, bool) {
	folded := Fold(name)
	if folded == "" {
		return "", false
	}
	if full, ok := t.exact[gender][folded]; ok {
		return full, true
	}

	var best aliasCandidate
	bestScore := 0.0
	for _, candidate := range t.byGender[gender] {
		score := matchr.JaroWinkler(folded, candidate.folded, false)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore >= t.threshold {
		t.logger.Debug("team alias matched approximately", "name", name, "full", best.full, "score", bestScore)
		return best.full, true
	}
	return "", false
}
