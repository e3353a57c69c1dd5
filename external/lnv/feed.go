package lnv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/usecase"
	"golang.org/x/net/html/charset"
)

const feedKickoffLayout = "02-01-2006 15:04:05"

type feedMatch struct {
	CodeMatch string `xml:"CodeMatch"`
	Date      string `xml:"Date"`
	Heure     string `xml:"Heure"`
	Score     string `xml:"Score"`
}

// ParseCalendarFeed collects every Match element of the feed, at any depth.
func ParseCalendarFeed(r io.Reader, loc *time.Location) ([]usecase.FeedMatch, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var out []usecase.FeedMatch
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Match" {
			continue
		}

		var raw feedMatch
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		code := strings.TrimSpace(raw.CodeMatch)
		value := strings.TrimSpace(raw.Date) + " " + strings.TrimSpace(raw.Heure)
		kickoff, err := time.ParseInLocation(feedKickoffLayout, value, loc)
		if err != nil {
			return nil, fmt.Errorf("match %s kickoff %q: %w", code, value, err)
		}
		out = append(out, usecase.FeedMatch{
			MatchCode: code,
			MatchDate: kickoff,
			Set:       strings.TrimSpace(raw.Score),
		})
	}
	return out, nil
}
