package pool

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	seasonPattern    = regexp.MustCompile(`^(\d{4})/(\d{4})$`)
	seasonURLPattern = regexp.MustCompile(`/(\d{4})-(\d{4})/`)
)

// ParseSeason reduces "2024/2025" to 2425.
func ParseSeason(raw string) (int, error) {
	m := seasonPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("invalid season %q: expected YYYY/YYYY", raw)
	}
	out, err := strconv.Atoi(m[1][2:] + m[2][2:])
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", raw, err)
	}
	return out, nil
}

// SeasonFromURL extracts "YYYY/YYYY" from a path segment like /2024-2025/.
func SeasonFromURL(rawURL string) (string, error) {
	m := seasonURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no season found in %q", rawURL)
	}
	return m[1] + "/" + m[2], nil
}

// NationalDivision keeps the part of a national pool name before "Poule".
func NationalDivision(poolName string) string {
	head, _, _ := strings.Cut(poolName, "Poule")
	return strings.TrimSpace(head)
}
