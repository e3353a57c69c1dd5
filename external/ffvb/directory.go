package ffvb

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/volley-sync/internal/domain/pool"
	"github.com/riskibarqy/volley-sync/internal/usecase"
)

var (
	leagueCodePattern = regexp.MustCompile(`codent=([^&]+)`)
	poolCodePattern   = regexp.MustCompile(`poule=([^&]+)`)
	seasonPattern     = regexp.MustCompile(`saison=([^&]+)`)
)

var _ usecase.FederationDirectory = (*Client)(nil)

func (c *Client) NationalListing(ctx context.Context) (usecase.NationalListing, error) {
	body, err := c.fetchPage(ctx, c.nationalURL)
	if err != nil {
		return usecase.NationalListing{}, err
	}
	listing, err := ParseNationalListing(body)
	if err != nil {
		return usecase.NationalListing{}, usecase.SourceError("national listing", err)
	}
	return listing, nil
}

// ParseNationalListing reads the pool links of the national championships page.
// The season comes from the first pool link.
func ParseNationalListing(r io.Reader) (usecase.NationalListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return usecase.NationalListing{}, fmt.Errorf("parse html: %w", err)
	}

	var listing usecase.NationalListing
	doc.Find(`a[href$=".htm"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if listing.RawSeason == "" {
			if season, err := pool.SeasonFromURL(href); err == nil {
				listing.RawSeason = season
			}
		}

		file := href[strings.LastIndex(href, "_")+1:]
		code := strings.ToUpper(strings.TrimSuffix(file, ".htm"))
		listing.Pools = append(listing.Pools, usecase.NationalPoolLink{
			PoolCode: code,
			PoolName: strings.TrimSpace(a.Text()),
			Href:     href,
		})
	})

	if len(listing.Pools) == 0 {
		return listing, fmt.Errorf("no pool links found")
	}
	if listing.RawSeason == "" {
		return listing, fmt.Errorf("no season found in pool links")
	}
	return listing, nil
}

func (c *Client) RegionalLeagues(ctx context.Context) ([]usecase.RegionalLeague, error) {
	body, err := c.fetchPage(ctx, c.regionalURL)
	if err != nil {
		return nil, err
	}
	leagues, err := ParseRegionalLeagues(body, c.regionalURL)
	if err != nil {
		return nil, usecase.SourceError("regional leagues", err)
	}
	return leagues, nil
}

// ParseRegionalLeagues reads the league tables of the regional championships page.
func ParseRegionalLeagues(r io.Reader, pageURL string) ([]usecase.RegionalLeague, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var leagues []usecase.RegionalLeague
	doc.Find("table.tableau_bleu, table.tableau_rouge, table.tableau_violet").Each(func(_ int, table *goquery.Selection) {
		name := strings.TrimSpace(table.Find(`td[style="text-align: center;"]`).First().Text())
		if name == "" {
			return
		}
		href, ok := table.Find(`a[href*="codent="]`).First().Attr("href")
		if !ok {
			return
		}
		m := leagueCodePattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		link, err := base.Parse(href)
		if err != nil {
			return
		}
		if link.Scheme == "https" {
			link.Scheme = "http"
		}
		leagues = append(leagues, usecase.RegionalLeague{
			LeagueCode: unescape(m[1]),
			LeagueName: name,
			URL:        link.String(),
		})
	})
	return leagues, nil
}

func (c *Client) RegionalPools(ctx context.Context, league usecase.RegionalLeague) ([]usecase.RegionalPoolLink, error) {
	body, err := c.fetchPage(ctx, league.URL)
	if err != nil {
		return nil, err
	}
	links, err := ParseRegionalPools(body)
	if err != nil {
		return nil, usecase.SourceError("regional pools of "+league.LeagueCode, err)
	}
	return links, nil
}

// ParseRegionalPools reads the pool entries of a league menu. The division label is
// the link heading the sub-menu a pool belongs to.
func ParseRegionalPools(r io.Reader) ([]usecase.RegionalPoolLink, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []usecase.RegionalPoolLink
	doc.Find(`ul#menu > li > ul > li > ul > li > a[href*="poule="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		code := poolCodePattern.FindStringSubmatch(href)
		season := seasonPattern.FindStringSubmatch(href)
		if code == nil || season == nil {
			return
		}
		division := a.Closest("ul").PrevAllFiltered("a").First()
		links = append(links, usecase.RegionalPoolLink{
			PoolCode:        unescape(code[1]),
			PoolName:        strings.TrimSpace(a.Text()),
			RawSeason:       unescape(season[1]),
			RawDivisionName: strings.TrimSpace(division.Text()),
		})
	})
	return links, nil
}

func unescape(value string) string {
	if out, err := url.QueryUnescape(value); err == nil {
		return out
	}
	return value
}
