package blockout

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/platform/resilience"
	"github.com/riskibarqy/volley-sync/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultPoolsBaseURL   = "http://localhost:8081/api/pools"
	defaultTeamsBaseURL   = "http://localhost:8082/api/teams"
	defaultMatchesBaseURL = "http://localhost:8083/api/matches"
	defaultTimeout        = 15 * time.Second
	maxResponseBytes      = 8 << 20
)

var errStoreTransient = crerr.New("record store transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	PoolsBaseURL   string
	TeamsBaseURL   string
	MatchesBaseURL string
	Timeout        time.Duration
	// ReadRetries applies to GET requests only; writes are sent once.
	ReadRetries    int
	Location       *time.Location
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client groups the three record store collections behind domain repositories.
type Client struct {
	Pools   *PoolRepository
	Teams   *TeamRepository
	Matches *MatchRepository
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	codec := timeCodec{loc: loc}

	newResource := func(name, baseURL, fallback string) *resource {
		baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if baseURL == "" {
			baseURL = fallback
		}
		breakerLogger := logger.With("collection", name)
		return &resource{
			name:        name,
			baseURL:     baseURL,
			httpClient:  httpClient,
			readRetries: max(cfg.ReadRetries, 0),
			logger:      breakerLogger,
			breaker: resilience.NewCircuitBreaker(name, cfg.CircuitBreaker,
				resilience.WithStateChange(func(name string, from, to resilience.CircuitState) {
					breakerLogger.Warn("record store circuit breaker changed state", "from", from, "to", to)
				}),
			),
		}
	}

	return &Client{
		Pools:   &PoolRepository{res: newResource("pools", cfg.PoolsBaseURL, defaultPoolsBaseURL), codec: codec},
		Teams:   &TeamRepository{res: newResource("teams", cfg.TeamsBaseURL, defaultTeamsBaseURL), codec: codec},
		Matches: &MatchRepository{res: newResource("matches", cfg.MatchesBaseURL, defaultMatchesBaseURL), codec: codec},
	}
}

// resource is one REST collection of the record store.
type resource struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	readRetries int
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	flight      resilience.SingleFlight
}

type response struct {
	status int
	body   []byte
}

func (r response) noContent() bool {
	return r.status == http.StatusNoContent
}

func (r *resource) url(path string, query url.Values) string {
	full := r.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		full += "?" + encoded
	}
	return full
}

// get issues a GET; identical concurrent lookups share one request.
func (r *resource) get(ctx context.Context, op, path string, query url.Values) (response, error) {
	fullURL := r.url(path, query)
	out, err := r.flight.DoContext(ctx, fullURL, func(shared context.Context) (any, error) {
		shared, cancel := context.WithTimeout(shared, r.readBudget())
		defer cancel()
		return r.do(shared, op, http.MethodGet, fullURL, nil, r.readRetries)
	})
	if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
		return response{}, &usecase.TransportError{Op: op, Err: ctxErr}
	}
	if err != nil {
		return response{}, err
	}
	resp, ok := out.(response)
	if !ok {
		return response{}, fmt.Errorf("unexpected response type %T", out)
	}
	return resp, nil
}

// readBudget bounds a shared GET: every attempt at the client timeout plus the waits between them.
func (r *resource) readBudget() time.Duration {
	budget := r.httpClient.Timeout
	for attempt := range r.readRetries {
		budget += retryDelay(attempt) + r.httpClient.Timeout
	}
	return budget
}

func retryDelay(attempt int) time.Duration {
	return time.Duration(attempt+1) * 500 * time.Millisecond
}

func (r *resource) send(ctx context.Context, op, method, path string, payload any) (response, error) {
	var body []byte
	if payload != nil {
		encoded, err := sonic.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode %s payload: %w", op, err)
		}
		body = encoded
	}
	return r.do(ctx, op, method, r.url(path, nil), body, 0)
}

func (r *resource) do(ctx context.Context, op, method, fullURL string, body []byte, retries int) (response, error) {
	var resp response
	err := r.breaker.Execute(func() error {
		var err error
		resp, err = r.execute(ctx, op, method, fullURL, body, retries)
		return err
	}, isStoreCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		r.logger.WarnContext(ctx, "record store circuit breaker rejected request", "op", op, "state", r.breaker.State())
		return response{}, &usecase.TransportError{
			Op:  op,
			Err: fmt.Errorf("%w: %s collection is temporarily unavailable", usecase.ErrDependencyUnavailable, r.name),
		}
	}
	return resp, err
}

func (r *resource) execute(ctx context.Context, op, method, fullURL string, body []byte, retries int) (response, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := r.roundTrip(ctx, op, method, fullURL, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !stderrors.Is(err, errStoreTransient) || attempt == retries {
			break
		}

		timer := time.NewTimer(retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return response{}, &usecase.TransportError{Op: op, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	r.logger.WarnContext(ctx, "record store request failed", "op", op, "method", method, "url", fullURL, "error", lastErr)
	return response{}, lastErr
}

func (r *resource) roundTrip(ctx context.Context, op, method, fullURL string, body []byte) (response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return response{}, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return response{}, &usecase.TransportError{Op: op, Err: fmt.Errorf("%w: send request: %v", errStoreTransient, err)}
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return response{}, &usecase.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: read response body: %v", errStoreTransient, readErr)}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return response{status: resp.StatusCode, body: raw}, nil
	}

	out := &usecase.TransportError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(raw),
	}
	if isRetryableStatus(resp.StatusCode) {
		out.Err = errStoreTransient
	}
	return response{}, out
}

func decode[T any](op string, resp response) (T, error) {
	var out T
	if err := sonic.Unmarshal(resp.body, &out); err != nil {
		return out, &usecase.TransportError{Op: op, StatusCode: resp.status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}

type errorBody struct {
	Message string `json:"message"`
}

func errorMessage(raw []byte) string {
	var body errorBody
	if err := sonic.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return strings.TrimSpace(body.Message)
	}
	return abbreviateBody(raw)
}

func isStoreCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errStoreTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
