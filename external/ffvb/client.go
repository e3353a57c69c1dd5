package ffvb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"
)

const (
	DefaultNationalURL = "http://www.ffvb.org/119-37-1-Championnats-Nationaux"
	DefaultRegionalURL = "http://www.ffvb.org/120-37-1-Championnats-Regionaux"
	DefaultExportURL   = "http://www.ffvbbeach.org/ffvbapp/resu/vbspo_calendrier_export.php"

	defaultTimeout      = 30 * time.Second
	defaultAttempts     = 3
	defaultRetryDelay   = 2 * time.Second
	defaultMaxDownloads = 10
)

type ClientConfig struct {
	NationalURL  string
	RegionalURL  string
	ExportURL    string
	Timeout      time.Duration
	Attempts     int
	RetryDelay   time.Duration
	MaxDownloads int
	Transport    http.RoundTripper
	Logger       *logging.Logger
}

// Client reads the federation's competition pages and calendar exports.
type Client struct {
	http        *resty.Client
	downloads   *ants.Pool
	nationalURL string
	regionalURL string
	exportURL   string
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxDownloads < 1 {
		cfg.MaxDownloads = defaultMaxDownloads
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	downloads, err := ants.NewPool(cfg.MaxDownloads)
	if err != nil {
		return nil, fmt.Errorf("create download pool: %w", err)
	}

	httpClient := resty.New().
		SetTransport(otelhttp.NewTransport(transport)).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Attempts-1).
		SetRetryWaitTime(cfg.RetryDelay).
		SetRetryMaxWaitTime(cfg.RetryDelay).
		SetHeader("user-agent", "volley-sync/1.0").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() != http.StatusOK
		}).
		AddRetryHook(func(resp *resty.Response, err error) {
			if resp == nil || resp.Request == nil {
				logger.Warn("federation request retry", "error", err)
				return
			}
			logger.Warn("federation request retry",
				"url", resp.Request.URL,
				"status", resp.StatusCode(),
				"attempt", resp.Request.Attempt,
				"error", err,
			)
		})

	return &Client{
		http:        httpClient,
		downloads:   downloads,
		nationalURL: firstNonEmpty(cfg.NationalURL, DefaultNationalURL),
		regionalURL: firstNonEmpty(cfg.RegionalURL, DefaultRegionalURL),
		exportURL:   firstNonEmpty(cfg.ExportURL, DefaultExportURL),
		logger:      logger,
	}, nil
}

// Close releases the download workers.
func (c *Client) Close() {
	c.downloads.Release()
}

// fetchPage returns the page body converted to UTF-8 from its declared charset.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (io.Reader, error) {
	resp, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", pageURL, resp.StatusCode())
	}
	reader, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("content-type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}
	return reader, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
