package lnv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/volley-sync/internal/usecase"
)

const calendarFeed = `<?xml version="1.0" encoding="UTF-8"?>
<Calendrier>
  <Journee numero="1">
    <Match>
      <CodeMatch>LAM001</CodeMatch>
      <Date>05-10-2024</Date>
      <Heure>20:00:00</Heure>
      <Score>3-1</Score>
    </Match>
    <Match>
      <CodeMatch> LAM002 </CodeMatch>
      <Date>06-10-2024</Date>
      <Heure>17:30:00</Heure>
      <Score>0-0</Score>
    </Match>
  </Journee>
</Calendrier>`

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestParseCalendarFeed_ReadsNestedMatches(t *testing.T) {
	t.Parallel()

	loc := paris(t)
	got, err := ParseCalendarFeed(strings.NewReader(calendarFeed), loc)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}

	want := []usecase.FeedMatch{
		{MatchCode: "LAM001", MatchDate: time.Date(2024, 10, 5, 20, 0, 0, 0, loc), Set: "3-1"},
		{MatchCode: "LAM002", MatchDate: time.Date(2024, 10, 6, 17, 30, 0, 0, loc), Set: "0-0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected feed (-want +got):\n%s", diff)
	}
}

func TestParseCalendarFeed_RejectsBadKickoff(t *testing.T) {
	t.Parallel()

	feed := `<Calendrier><Match><CodeMatch>X</CodeMatch><Date>2024-10-05</Date><Heure>20:00</Heure></Match></Calendrier>`
	if _, err := ParseCalendarFeed(strings.NewReader(feed), time.UTC); err == nil {
		t.Fatalf("expected kickoff parse error")
	}
}

const livePage = `<html><body>
<span id="ctl00_Content_Main_42_userControl_lbl_title">Marmara SpikeLigue</span>
<div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl0_RPL_Leg">
  <div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl0_RADLIST_Matches_ctrl0_RPL_Match">
    <div onclick="window.open('MatchStatistics.aspx?mID=8812&amp;ID=115')">
      <span id="x_Label2">PARIS</span>
      <span id="x_Label4">TOURS</span>
      <span id="x_LB_DataOra">05/10/2024 - 20:00</span>
    </div>
  </div>
  <div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl0_RADLIST_Matches_ctrl2_RPL_Match">
    <div>
      <span id="x_Label6">NICE</span>
      <span id="x_Label7">SETE</span>
      <span id="x_LB_DataOra">06/10/2024 - 17:00</span>
    </div>
  </div>
</div>
<div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl2_RPL_Leg">
  <div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl2_RADLIST_Matches_ctrl0_RPL_Match">
    <div onclick="go('mID=8830')">
      <span id="y_Label6">CANNES</span>
      <span id="y_Label7">NANTES</span>
      <span id="y_LB_DataOra">12/10/2024 - 19:30</span>
    </div>
  </div>
</div>
<div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl6_RPL_Leg">
  <div id="ctl00_Content_Main_42_userControl_RADLIST_Legs_ctrl6_RADLIST_Matches_ctrl0_RPL_Match">
    <div onclick="go('mID=9999')"><span id="z_LB_DataOra">19/10/2024 - 19:30</span></div>
  </div>
</div>
</body></html>`

func TestParseLiveMatches_WalksDaysAndMatches(t *testing.T) {
	t.Parallel()

	loc := paris(t)
	got, skipped, err := ParseLiveMatches(strings.NewReader(livePage), "text/html; charset=utf-8", loc)
	if err != nil {
		t.Fatalf("parse live page: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("expected one skipped block, got=%d", skipped)
	}

	want := []usecase.LiveMatch{
		{LiveCode: 8812, HomeTeam: "PARIS", GuestTeam: "TOURS", MatchDate: time.Date(2024, 10, 5, 20, 0, 0, 0, loc)},
		{LiveCode: 8830, HomeTeam: "CANNES", GuestTeam: "NANTES", MatchDate: time.Date(2024, 10, 12, 19, 30, 0, 0, loc)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected matches (-want +got):\n%s", diff)
	}
}

func TestParseLiveMatches_RequiresCompetitionID(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseLiveMatches(strings.NewReader("<html></html>"), "text/html", time.UTC); err == nil {
		t.Fatalf("expected error without competition id")
	}
}

func TestClientCalendarFeed_FetchesOverHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xml/calendrier-LAM.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "application/xml")
		_, _ = w.Write([]byte(calendarFeed))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{Timeout: 5 * time.Second, Location: paris(t)})

	entries, err := client.CalendarFeed(context.Background(), server.URL+"/xml/calendrier-LAM.xml")
	if err != nil {
		t.Fatalf("calendar feed: %v", err)
	}
	if len(entries) != 2 || entries[0].MatchCode != "LAM001" {
		t.Fatalf("unexpected entries=%+v", entries)
	}

	if _, err := client.CalendarFeed(context.Background(), server.URL+"/missing.xml"); err == nil {
		t.Fatalf("expected error for missing feed")
	}
}
