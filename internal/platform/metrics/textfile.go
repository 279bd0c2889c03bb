package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
)

const namespace = "fpl_collector"

// Textfile records fetch attempts and run outcomes and flushes them to a file in the
// node_exporter textfile format once the run is observed.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	logger   *logging.Logger

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	runSuccess      prometheus.Gauge
	runDuration     prometheus.Gauge
	runTimestamp    prometheus.Gauge
	entities        *prometheus.GaugeVec
	historyCoverage prometheus.Gauge
	historyFailures prometheus.Gauge
	checks          *prometheus.GaugeVec
	stageErrors     *prometheus.GaugeVec
}

func NewTextfile(path string, logger *logging.Logger) *Textfile {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Textfile{
		path:     strings.TrimSpace(path),
		registry: prometheus.NewRegistry(),
		logger:   logger,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "HTTP attempts against the FPL API by endpoint and outcome.",
		}, []string{"endpoint", "code", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_attempt_duration_seconds",
			Help:      "Duration of single HTTP attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when the last run collected a dataset, passed validation and wrote every artifact.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run started.",
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Entity counts of the last collected dataset.",
		}, []string{"entity"}),
		historyCoverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_coverage_ratio",
			Help:      "Fetched over requested player histories.",
		}),
		historyFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_failures",
			Help:      "Player histories that could not be fetched.",
		}),
		checks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_check_passed",
			Help:      "1 when the named validation check passed.",
		}, []string{"check"}),
		stageErrors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_error",
			Help:      "1 when the named stage of the last run failed.",
		}, []string{"stage"}),
	}

	t.registry.MustRegister(
		t.attempts,
		t.attemptDuration,
		t.runSuccess,
		t.runDuration,
		t.runTimestamp,
		t.entities,
		t.historyCoverage,
		t.historyFailures,
		t.checks,
		t.stageErrors,
	)
	return t
}

func (t *Textfile) Registry() *prometheus.Registry {
	return t.registry
}

func (t *Textfile) ObserveFetchAttempt(endpoint string, statusCode int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	code := "none"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	t.attempts.WithLabelValues(endpoint, code, outcome).Inc()
	t.attemptDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Stage labels for the stage_error gauge.
const (
	StageCollect      = "collect"
	StageLiveGameweek = "live_gameweek"
	StageWrite        = "write"
	StageArchive      = "archive"
	StageMirror       = "mirror"
)

var stages = []string{StageCollect, StageLiveGameweek, StageWrite, StageArchive, StageMirror}

// RunSnapshot is the outcome of one run as the textfile sees it. Failed maps a stage
// label to whether that stage failed; stages not present count as healthy.
type RunSnapshot struct {
	StartedAt        time.Time
	Duration         time.Duration
	Counts           map[string]int
	HistoryCoverage  float64
	HistoryFailures  int
	Checks           map[string]bool
	ValidationPassed bool
	Failed           map[string]bool
}

// RecordRun sets the run gauges and flushes the textfile. Coverage and check gauges
// keep their previous values when collection failed.
func (t *Textfile) RecordRun(ctx context.Context, run RunSnapshot) {
	t.runDuration.Set(run.Duration.Seconds())
	if !run.StartedAt.IsZero() {
		t.runTimestamp.Set(float64(run.StartedAt.Unix()))
	}

	for entity, count := range run.Counts {
		t.entities.WithLabelValues(entity).Set(float64(count))
	}
	collected := !run.Failed[StageCollect]
	if collected {
		t.historyCoverage.Set(run.HistoryCoverage)
		t.historyFailures.Set(float64(run.HistoryFailures))
		for name, passed := range run.Checks {
			t.checks.WithLabelValues(name).Set(boolGauge(passed))
		}
	}

	for _, stage := range stages {
		t.stageErrors.WithLabelValues(stage).Set(boolGauge(run.Failed[stage]))
	}
	t.runSuccess.Set(boolGauge(collected && !run.Failed[StageWrite] && run.ValidationPassed))

	if err := t.Flush(); err != nil {
		t.logger.WarnContext(ctx, "write metrics textfile failed", "path", t.path, "error", err)
	}
}

// Flush writes the registry to the configured path. An empty path disables writing.
func (t *Textfile) Flush() error {
	if t.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("write textfile %s: %w", t.path, err)
	}
	return nil
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
