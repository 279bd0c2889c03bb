package fplapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/platform/resilience"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

type countingObserver struct {
	attempts atomic.Int64
	failures atomic.Int64
}

func (o *countingObserver) ObserveFetchAttempt(_ string, _ int, _ time.Duration, err error) {
	o.attempts.Add(1)
	if err != nil {
		o.failures.Add(1)
	}
}

func newTestClient(t *testing.T, handler http.Handler, breaker resilience.CircuitBreakerConfig) (*Client, *recordedSleeps, *countingObserver) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	observer := &countingObserver{}
	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		BaseURL:        server.URL,
		Retry:          resilience.DefaultRetryPolicy(),
		HistoryRetry:   resilience.DefaultRetryPolicy().WithMaxAttempts(2),
		CircuitBreaker:        breaker,
		HistoryCircuitBreaker: breaker,
		Observer:              observer,
	})
	sleeps := &recordedSleeps{}
	client.sleep = sleeps.sleep
	return client, sleeps, observer
}

func TestClient_FetchBootstrap_RecoversAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap-static/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("user-agent") != defaultUserAgent {
			t.Errorf("unexpected user agent: %q", r.Header.Get("user-agent"))
		}
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`maintenance`))
		case 2:
			_, _ = w.Write([]byte(`{"elements": [`))
		default:
			_, _ = w.Write([]byte(`{"events":[{"id":1,"is_current":true}],"teams":[{"id":1,"name":"Arsenal"}],"elements":[{"id":7,"web_name":"Saka","now_cost":105}],"total_players":11000000}`))
		}
	})
	client, sleeps, observer := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	bootstrap, payload, err := client.FetchBootstrap(context.Background())
	if err != nil {
		t.Fatalf("fetch bootstrap: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("unexpected call count: got=%d want=3", got)
	}
	if len(bootstrap.Elements) != 1 || bootstrap.Elements[0].WebName() != "Saka" || bootstrap.Elements[0].NowCost() != 105 {
		t.Fatalf("unexpected decoded bootstrap: %+v", bootstrap.Elements)
	}
	if bootstrap.TotalPlayers != 11000000 {
		t.Fatalf("unexpected total players: %d", bootstrap.TotalPlayers)
	}
	if payload.EntityType != string(EndpointBootstrap) || payload.EntityKey != "static" || payload.PayloadHash == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(sleeps.delays) != 2 || sleeps.delays[0] != time.Second || sleeps.delays[1] != 2*time.Second {
		t.Fatalf("unexpected backoff delays: %v", sleeps.delays)
	}
	if observer.attempts.Load() != 3 || observer.failures.Load() != 2 {
		t.Fatalf("unexpected observed attempts: attempts=%d failures=%d", observer.attempts.Load(), observer.failures.Load())
	}
}

func TestClient_FetchFixtures_ExhaustionReturnsFetchError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("event") != "5" {
			t.Errorf("expected event query, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, sleeps, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	_, _, err := client.FetchFixtures(context.Background(), 5)
	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if fetchErr.Attempts != 3 || fetchErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected fetch error: attempts=%d status=%d", fetchErr.Attempts, fetchErr.StatusCode)
	}
	if fetchErr.Endpoint != string(EndpointFixtures) || fetchErr.Path != "/fixtures/" {
		t.Fatalf("unexpected fetch error target: %s %s", fetchErr.Endpoint, fetchErr.Path)
	}
	if calls.Load() != 3 {
		t.Fatalf("unexpected call count: got=%d want=3", calls.Load())
	}
	if len(sleeps.delays) != 2 {
		t.Fatalf("expected no wait after the last attempt, got %v", sleeps.delays)
	}
}

func TestClient_FetchPlayerSummary_UsesHistoryPolicy(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	client, _, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	_, _, err := client.FetchPlayerSummary(context.Background(), 42)
	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Attempts != 2 {
		t.Fatalf("expected two attempts under the history policy, got %v", err)
	}
	if fetchErr.Path != "/element-summary/42/" {
		t.Fatalf("unexpected path: %s", fetchErr.Path)
	}
}

func TestClient_FetchPlayerSummary_Decodes(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fixtures":[{"id":11,"difficulty":4}],"history":[{"round":1,"total_points":9},{"round":2,"total_points":2}],"history_past":[]}`))
	})
	client, sleeps, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	history, payload, err := client.FetchPlayerSummary(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch player summary: %v", err)
	}
	if len(history.History) != 2 || history.History[0].Int("total_points") != 9 {
		t.Fatalf("unexpected history: %+v", history.History)
	}
	if len(history.Fixtures) != 1 || history.Fixtures[0].Int("difficulty") != 4 {
		t.Fatalf("unexpected fixtures: %+v", history.Fixtures)
	}
	if payload.EntityKey != "42" {
		t.Fatalf("unexpected entity key: %s", payload.EntityKey)
	}
	if len(sleeps.delays) != 0 {
		t.Fatalf("first-try success must not wait, got %v", sleeps.delays)
	}
}

func TestClient_CircuitBreakerCountsOneFailurePerCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for playerID := int64(1); playerID <= 2; playerID++ {
		_, _, err := client.FetchPlayerSummary(context.Background(), playerID)
		if err == nil || errors.Is(err, resilience.ErrCircuitOpen) {
			t.Fatalf("player %d: expected upstream failure, got %v", playerID, err)
		}
	}
	_, _, err := client.FetchPlayerSummary(context.Background(), 3)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Attempts != 0 {
		t.Fatalf("expected rejected fetch without attempts, got %v", err)
	}
	if calls.Load() != 4 {
		t.Fatalf("rejected call must not reach the server: calls=%d", calls.Load())
	}
}

func TestClient_HistoryBreakerDoesNotBlockCoreEndpoints(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/element-summary/") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:            server.Client(),
		BaseURL:               server.URL,
		HistoryRetry:          resilience.DefaultRetryPolicy().WithMaxAttempts(1),
		CircuitBreaker:        resilience.DefaultCircuitBreakerConfig(),
		HistoryCircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1},
		Logger:                logging.NewNop(),
	})
	client.sleep = (&recordedSleeps{}).sleep

	_, _, _ = client.FetchPlayerSummary(context.Background(), 1)
	if _, _, err := client.FetchPlayerSummary(context.Background(), 2); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected history breaker to be open, got %v", err)
	}
	if _, _, err := client.FetchFixtures(context.Background(), 0); err != nil {
		t.Fatalf("fixtures must use their own breaker: %v", err)
	}
}

func TestClient_Fetch_OversizedBodyIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"events":[],"teams":[],"elements":[]}`))
	})
	client, sleeps, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})
	client.maxBody = 16

	_, _, err := client.FetchBootstrap(context.Background())
	if !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("expected body too large error, got %v", err)
	}
	if calls.Load() != 1 || len(sleeps.delays) != 0 {
		t.Fatalf("oversized body must not be retried: calls=%d sleeps=%v", calls.Load(), sleeps.delays)
	}
}

func TestAbbreviateBody_KeepsRunesWhole(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("é", maxBodyRunes+10)
	got := abbreviateBody([]byte(body))
	if !utf8.ValidString(got) {
		t.Fatalf("abbreviated body is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("é", maxBodyRunes) + "..."; got != want {
		t.Fatalf("unexpected abbreviation length: got=%d runes", utf8.RuneCountInString(got))
	}
	if short := abbreviateBody([]byte("  gone  ")); short != "gone" {
		t.Fatalf("unexpected short body: %q", short)
	}
}

func TestClient_FetchLiveGameweek_RejectsInvalidGameweek(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if _, _, err := client.FetchLiveGameweek(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestClient_Fetch_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client, _, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return resilience.Sleep(ctx, d)
	}

	_, _, err := client.FetchBootstrap(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
