package lnv

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/volley-sync/internal/usecase"
	"golang.org/x/net/html/charset"
)

const liveKickoffLayout = "02/01/2006 - 15:04"

var (
	mainIDPattern    = regexp.MustCompile(`Content_Main_(\d+)_userControl_lbl_title`)
	matchIDPattern   = regexp.MustCompile(`mID=(\d+)`)
	homeLabelPattern = regexp.MustCompile(`Label2|Label6`)
	awayLabelPattern = regexp.MustCompile(`Label4|Label7`)
)

// ParseLiveMatches walks the day and match blocks of a competition page. Block
// indices advance by two. Blocks missing a match id or kickoff are counted as skipped.
func ParseLiveMatches(r io.Reader, contentType string, loc *time.Location) ([]usecase.LiveMatch, int, error) {
	reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, 0, fmt.Errorf("decode page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	mainID := ""
	doc.Find("span[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		if m := mainIDPattern.FindStringSubmatch(id); m != nil {
			mainID = m[1]
			return false
		}
		return true
	})
	if mainID == "" {
		return nil, 0, fmt.Errorf("competition id not found")
	}

	prefix := "ctl00_Content_Main_" + mainID + "_userControl_RADLIST_Legs_ctrl"
	var (
		out     []usecase.LiveMatch
		skipped int
	)
	for day := 0; ; day += 2 {
		if byID(doc.Selection, fmt.Sprintf("%s%d_RPL_Leg", prefix, day)).Length() == 0 {
			break
		}
		for slot := 0; ; slot += 2 {
			block := byID(doc.Selection, fmt.Sprintf("%s%d_RADLIST_Matches_ctrl%d_RPL_Match", prefix, day, slot))
			if block.Length() == 0 {
				break
			}
			item, ok := parseMatchBlock(block, loc)
			if !ok {
				skipped++
				continue
			}
			out = append(out, item)
		}
	}
	return out, skipped, nil
}

func parseMatchBlock(block *goquery.Selection, loc *time.Location) (usecase.LiveMatch, bool) {
	onclick, _ := block.Find("div[onclick]").First().Attr("onclick")
	m := matchIDPattern.FindStringSubmatch(onclick)
	if m == nil {
		return usecase.LiveMatch{}, false
	}
	liveCode, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return usecase.LiveMatch{}, false
	}

	raw := strings.TrimSpace(block.Find(`span[id*="LB_DataOra"]`).First().Text())
	if raw == "" {
		return usecase.LiveMatch{}, false
	}
	kickoff, err := time.ParseInLocation(liveKickoffLayout, raw, loc)
	if err != nil {
		return usecase.LiveMatch{}, false
	}

	return usecase.LiveMatch{
		LiveCode:  liveCode,
		HomeTeam:  spanText(block, homeLabelPattern),
		GuestTeam: spanText(block, awayLabelPattern),
		MatchDate: kickoff,
	}, true
}

func spanText(block *goquery.Selection, pattern *regexp.Regexp) string {
	span := block.Find("span[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return pattern.MatchString(id)
	}).First()
	return strings.TrimSpace(span.Text())
}

func byID(root *goquery.Selection, id string) *goquery.Selection {
	return root.Find(`[id="` + id + `"]`)
}
