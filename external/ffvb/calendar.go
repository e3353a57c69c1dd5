package ffvb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/volley-sync/internal/usecase"
	"golang.org/x/text/encoding/charmap"
)

var calendarHeaders = []string{
	"Entité", "Match", "EQA_no", "EQB_no", "EQA_nom", "EQB_nom",
	"Date", "Heure", "Set", "Score", "Salle", "Arb1", "Arb2",
}

var _ usecase.CalendarSource = (*Client)(nil)

type calendarResult struct {
	rows []usecase.CalendarRow
	err  error
}

// FetchCalendar downloads and parses one pool's calendar export; downloads share a bounded worker pool.
func (c *Client) FetchCalendar(ctx context.Context, req usecase.CalendarRequest) ([]usecase.CalendarRow, error) {
	done := make(chan calendarResult, 1)
	err := c.downloads.Submit(func() {
		if ctx.Err() != nil {
			done <- calendarResult{err: ctx.Err()}
			return
		}
		rows, err := c.downloadCalendar(ctx, req)
		done <- calendarResult{rows: rows, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("queue calendar download %s/%s: %w", req.LeagueCode, req.PoolCode, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-done:
		return result.rows, result.err
	}
}

func (c *Client) downloadCalendar(ctx context.Context, req usecase.CalendarRequest) ([]usecase.CalendarRow, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"cal_saison":   req.RawSeason,
			"cal_codent":   req.LeagueCode,
			"cal_codpoule": req.PoolCode,
		}).
		Post(c.exportURL)
	if err != nil {
		return nil, fmt.Errorf("download calendar %s/%s: %w", req.LeagueCode, req.PoolCode, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download calendar %s/%s: unexpected status %d", req.LeagueCode, req.PoolCode, resp.StatusCode())
	}

	c.logger.DebugContext(ctx, "calendar downloaded",
		"league_code", req.LeagueCode,
		"pool_code", req.PoolCode,
		"bytes", len(resp.Body()),
	)

	calendar, err := ParseCalendar(bytes.NewReader(decodeExport(resp.Body())))
	if err != nil {
		return nil, usecase.SourceError("calendar "+req.LeagueCode+"/"+req.PoolCode, err)
	}
	for _, malformed := range calendar.Malformed {
		c.logger.WarnContext(ctx, "skipping malformed calendar record",
			"league_code", req.LeagueCode,
			"pool_code", req.PoolCode,
			"line", malformed.Line,
			"error", malformed.Err,
		)
	}
	if len(calendar.Malformed) > 0 {
		c.logger.WarnContext(ctx, "calendar export had malformed records",
			"league_code", req.LeagueCode,
			"pool_code", req.PoolCode,
			"skipped", len(calendar.Malformed),
			"rows", len(calendar.Rows),
		)
	}
	return calendar.Rows, nil
}

// decodeExport returns UTF-8 text; exports that are not valid UTF-8 are read as Latin-1.
func decodeExport(body []byte) []byte {
	if utf8.Valid(body) {
		return body
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// Calendar is a parsed export. Malformed holds the records that were skipped.
type Calendar struct {
	Rows      []usecase.CalendarRow
	Malformed []*csv.ParseError
}

// ParseCalendar reads a semicolon separated calendar export with its header line.
// Every record must be as wide as the header; other records are skipped.
func ParseCalendar(r io.Reader) (Calendar, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true

	var calendar Calendar
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return calendar, nil
	}
	if err != nil {
		return calendar, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[name] = i
	}
	for _, name := range calendarHeaders {
		if _, ok := index[name]; !ok {
			return calendar, fmt.Errorf("missing column %q", name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			calendar.Malformed = append(calendar.Malformed, parseErr)
			continue
		}
		if err != nil {
			return calendar, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		cell := func(name string) string {
			return strings.TrimSpace(record[index[name]])
		}
		optional := func(name string) *string {
			value := cell(name)
			if value == "" {
				return nil
			}
			return &value
		}

		calendar.Rows = append(calendar.Rows, usecase.CalendarRow{
			Line:       line,
			LeagueCode: cell("Entité"),
			MatchCode:  cell("Match"),
			ClubIDA:    cell("EQA_no"),
			ClubIDB:    cell("EQB_no"),
			TeamNameA:  cell("EQA_nom"),
			TeamNameB:  cell("EQB_nom"),
			Date:       cell("Date"),
			Time:       cell("Heure"),
			Set:        optional("Set"),
			Score:      optional("Score"),
			Venue:      optional("Salle"),
			Referee1:   optional("Arb1"),
			Referee2:   optional("Arb2"),
		})
	}
	return calendar, nil
}
