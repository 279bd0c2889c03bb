package fplapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/platform/resilience"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL   = "https://fantasy.premierleague.com/api"
	defaultUserAgent = "fpl-collector/1.0"
	defaultTimeout   = 15 * time.Second
	// bootstrap-static is around 2MB.
	maxBodyBytes = 16 << 20
)

type Endpoint string

const (
	EndpointBootstrap      Endpoint = "bootstrap"
	EndpointFixtures       Endpoint = "fixtures"
	EndpointLiveGameweek   Endpoint = "live_gameweek"
	EndpointElementSummary Endpoint = "element_summary"
)

var (
	errTransport = crerr.New("fpl transport failure")
	errStatus    = crerr.New("fpl unexpected status")
	errDecode    = crerr.New("fpl undecodable body")
	// errBodyTooLarge is not retried: the next attempt would get the same body.
	errBodyTooLarge = crerr.New("fpl response body too large")
)

// AttemptObserver sees every HTTP attempt, including the ones that are retried.
type AttemptObserver interface {
	ObserveFetchAttempt(endpoint string, statusCode int, duration time.Duration, err error)
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	// Retry applies to bootstrap, fixtures and live gameweek calls.
	Retry resilience.RetryPolicy
	// HistoryRetry applies to element-summary calls.
	HistoryRetry resilience.RetryPolicy
	Logger       *logging.Logger
	// CircuitBreaker guards bootstrap, fixtures and live gameweek calls.
	CircuitBreaker resilience.CircuitBreakerConfig
	// HistoryCircuitBreaker guards element-summary calls.
	HistoryCircuitBreaker resilience.CircuitBreakerConfig
	Observer              AttemptObserver
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	retry        resilience.RetryPolicy
	historyRetry resilience.RetryPolicy
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	historyGuard *resilience.CircuitBreaker
	observer     AttemptObserver
	maxBody      int
	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
}

// Request describes one logical fetch. Path is relative to the base URL.
type Request struct {
	Endpoint  Endpoint
	Path      string
	Query     url.Values
	EntityKey string
	Retry     resilience.RetryPolicy
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnTransition(func(from, to resilience.CircuitState) {
		logger.Warn("fpl circuit breaker state changed", "breaker", "core", "from", from, "to", to)
	})
	historyGuard := resilience.NewCircuitBreakerFromConfig(cfg.HistoryCircuitBreaker)
	historyGuard.OnTransition(func(from, to resilience.CircuitState) {
		logger.Warn("fpl circuit breaker state changed", "breaker", "history", "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		userAgent:    userAgent,
		retry:        policyOrDefault(cfg.Retry),
		historyRetry: policyOrDefault(cfg.HistoryRetry),
		logger:       logger,
		breaker:      breaker,
		historyGuard: historyGuard,
		observer:     cfg.Observer,
		maxBody:      maxBodyBytes,
		now:          time.Now,
		sleep:        resilience.Sleep,
	}
}

func (c *Client) FetchBootstrap(ctx context.Context) (fpl.Bootstrap, rawdata.Payload, error) {
	var out fpl.Bootstrap
	payload, err := c.Fetch(ctx, Request{
		Endpoint:  EndpointBootstrap,
		Path:      "/bootstrap-static/",
		EntityKey: "static",
		Retry:     c.retry,
	}, &out)
	if err != nil {
		return fpl.Bootstrap{}, rawdata.Payload{}, err
	}
	return out, payload, nil
}

// FetchFixtures returns the whole season when gameweek is 0.
func (c *Client) FetchFixtures(ctx context.Context, gameweek int) ([]fpl.Fixture, rawdata.Payload, error) {
	req := Request{
		Endpoint:  EndpointFixtures,
		Path:      "/fixtures/",
		EntityKey: "all",
		Retry:     c.retry,
	}
	if gameweek > 0 {
		req.Query = url.Values{"event": []string{fmt.Sprint(gameweek)}}
		req.EntityKey = fmt.Sprintf("event=%d", gameweek)
	}

	var out []fpl.Fixture
	payload, err := c.Fetch(ctx, req, &out)
	if err != nil {
		return nil, rawdata.Payload{}, err
	}
	return out, payload, nil
}

func (c *Client) FetchLiveGameweek(ctx context.Context, gameweek int) (fpl.Record, rawdata.Payload, error) {
	if gameweek <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	var out fpl.Record
	payload, err := c.Fetch(ctx, Request{
		Endpoint:  EndpointLiveGameweek,
		Path:      fmt.Sprintf("/event/%d/live/", gameweek),
		EntityKey: fmt.Sprint(gameweek),
		Retry:     c.retry,
	}, &out)
	if err != nil {
		return nil, rawdata.Payload{}, err
	}
	return out, payload, nil
}

func (c *Client) FetchPlayerSummary(ctx context.Context, playerID int64) (fpl.PlayerHistory, rawdata.Payload, error) {
	if playerID <= 0 {
		return fpl.PlayerHistory{}, rawdata.Payload{}, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}

	var out fpl.PlayerHistory
	payload, err := c.Fetch(ctx, Request{
		Endpoint:  EndpointElementSummary,
		Path:      fmt.Sprintf("/element-summary/%d/", playerID),
		EntityKey: fpl.Key(playerID),
		Retry:     c.historyRetry,
	}, &out)
	if err != nil {
		return fpl.PlayerHistory{}, rawdata.Payload{}, err
	}
	return out, payload, nil
}

// Fetch GETs one endpoint and decodes the body into target, a non-nil pointer. Network
// errors, non-2xx statuses and undecodable bodies are retried under req.Retry; target is
// only written from a body that decoded cleanly. The circuit breaker sees one outcome
// per call, after the retries are spent.
func (c *Client) Fetch(ctx context.Context, req Request, target any) (rawdata.Payload, error) {
	targetValue := reflect.ValueOf(target)
	if target == nil || targetValue.Kind() != reflect.Pointer || targetValue.IsNil() {
		return rawdata.Payload{}, fmt.Errorf("%w: fetch target must be a non-nil pointer", usecase.ErrInvalidInput)
	}

	policy := resilience.NormalizeRetryPolicy(req.Retry)
	fullURL := c.baseURL + req.Path
	if encoded := req.Query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	breaker := c.breakerFor(req.Endpoint)
	if err := breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "endpoint", req.Endpoint, "state", breaker.State())
		return rawdata.Payload{}, &usecase.FetchError{
			Endpoint: string(req.Endpoint),
			Path:     req.Path,
			Cause:    err,
		}
	}

	var (
		lastErr    error
		lastStatus int
		attempts   int
	)
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attempts = attempt

		started := c.now()
		raw, status, err := c.executeRequest(ctx, fullURL)
		if err == nil {
			decoded := reflect.New(targetValue.Elem().Type())
			if decodeErr := sonic.Unmarshal(raw, decoded.Interface()); decodeErr != nil {
				err = crerr.Wrapf(errDecode, "decode %s body: %v", req.Endpoint, decodeErr)
			} else {
				targetValue.Elem().Set(decoded.Elem())
			}
		}
		c.observeAttempt(req.Endpoint, status, c.now().Sub(started), err)

		if err == nil {
			breaker.RecordSuccess()
			if attempt > 1 {
				c.logger.InfoContext(ctx, "fpl request recovered", "endpoint", req.Endpoint, "path", req.Path, "attempt", attempt)
			}
			return rawdata.NewPayload(fpl.SourceName, string(req.Endpoint), req.EntityKey, raw, c.now()), nil
		}

		if ctx.Err() != nil {
			breaker.Release()
			return rawdata.Payload{}, &usecase.FetchError{
				Endpoint: string(req.Endpoint),
				Path:     req.Path,
				Attempts: attempt,
				Cause:    ctx.Err(),
			}
		}
		lastErr, lastStatus = err, status

		if attempt == policy.MaxAttempts || crerr.Is(err, errBodyTooLarge) {
			break
		}
		delay := policy.Delay(attempt)
		c.logger.WarnContext(ctx, "fpl request failed, retrying",
			"endpoint", req.Endpoint,
			"path", req.Path,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"backoff", delay.String(),
			"error", err,
		)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			breaker.Release()
			return rawdata.Payload{}, &usecase.FetchError{
				Endpoint:   string(req.Endpoint),
				Path:       req.Path,
				Attempts:   attempt,
				StatusCode: lastStatus,
				Cause:      sleepErr,
			}
		}
	}

	breaker.RecordFailure()
	fetchErr := &usecase.FetchError{
		Endpoint:   string(req.Endpoint),
		Path:       req.Path,
		Attempts:   attempts,
		StatusCode: lastStatus,
		Cause:      lastErr,
	}
	c.logger.WarnContext(ctx, "fpl request failed", "endpoint", req.Endpoint, "path", req.Path, "error", fetchErr)
	return rawdata.Payload{}, fetchErr
}

func (c *Client) breakerFor(endpoint Endpoint) *resilience.CircuitBreaker {
	if endpoint == EndpointElementSummary {
		return c.historyGuard
	}
	return c.breaker
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, crerr.Wrapf(errTransport, "send request: %v", err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxBody)+1))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, crerr.Wrapf(errTransport, "read response body: %v", readErr)
	}
	if len(raw) > c.maxBody {
		return nil, resp.StatusCode, crerr.Wrapf(errBodyTooLarge, "body exceeds %d bytes", c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, crerr.Wrapf(errStatus, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) observeAttempt(endpoint Endpoint, statusCode int, duration time.Duration, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveFetchAttempt(string(endpoint), statusCode, duration, err)
}

func policyOrDefault(policy resilience.RetryPolicy) resilience.RetryPolicy {
	if policy == (resilience.RetryPolicy{}) {
		return resilience.DefaultRetryPolicy()
	}
	return resilience.NormalizeRetryPolicy(policy)
}

const maxBodyRunes = 240

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(text) <= maxBodyRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxBodyRunes]) + "..."
}
