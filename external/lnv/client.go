package lnv

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout   = 20 * time.Second
	maxRedirects     = 5
	maxResponseBytes = 8 << 20
)

type ClientConfig struct {
	Timeout  time.Duration
	Location *time.Location
	Logger   *logging.Logger
}

// Client reads the professional league's calendar feeds and live-score pages.
type Client struct {
	http     *fasthttp.Client
	location *time.Location
	logger   *logging.Logger
}

var _ usecase.ProLeagueSource = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "volley-sync",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxResponseBodySize: maxResponseBytes,
		},
		location: loc,
		logger:   logger,
	}
}

type page struct {
	body        []byte
	contentType string
}

func (c *Client) get(ctx context.Context, url string) (page, error) {
	if err := ctx.Err(); err != nil {
		return page{}, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoRedirects(req, resp, maxRedirects); err != nil {
		return page{}, fmt.Errorf("get %s: %w", url, err)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return page{}, fmt.Errorf("get %s: unexpected status %d", url, status)
	}

	c.logger.DebugContext(ctx, "league page fetched", "url", url, "bytes", len(resp.Body()))
	return page{
		body:        bytes.Clone(resp.Body()),
		contentType: string(resp.Header.ContentType()),
	}, nil
}

func (c *Client) CalendarFeed(ctx context.Context, feedURL string) ([]usecase.FeedMatch, error) {
	p, err := c.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	entries, err := ParseCalendarFeed(bytes.NewReader(p.body), c.location)
	if err != nil {
		return nil, usecase.SourceError("calendar feed "+feedURL, err)
	}
	return entries, nil
}

func (c *Client) LiveMatches(ctx context.Context, pageURL string) ([]usecase.LiveMatch, error) {
	p, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	matches, skipped, err := ParseLiveMatches(bytes.NewReader(p.body), p.contentType, c.location)
	if err != nil {
		return nil, usecase.SourceError("live page "+pageURL, err)
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "live page blocks without match id or kickoff skipped", "url", pageURL, "skipped", skipped)
	}
	return matches, nil
}
