package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fpl-collector/external/fplapi"
	"github.com/riskibarqy/fpl-collector/internal/config"
	"github.com/riskibarqy/fpl-collector/internal/infrastructure/artifact"
	"github.com/riskibarqy/fpl-collector/internal/infrastructure/objectstore"
	"github.com/riskibarqy/fpl-collector/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/fpl-collector/internal/platform/id"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/platform/metrics"
	"github.com/riskibarqy/fpl-collector/internal/platform/resilience"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

// Collector holds the wired run service and whatever it opened on the way.
type Collector struct {
	Runs    *usecase.RunService
	Metrics *metrics.Textfile

	closers []func() error
}

// NewCollector wires the FPL client, the artifact writer and the optional archive,
// mirror and metrics sinks from cfg.
func NewCollector(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Collector, error) {
	if logger == nil {
		logger = logging.Default()
	}
	out := &Collector{}
	deps := offlineDeps(cfg, logger)
	deps.Writer = artifact.NewWriter(artifact.WriterConfig{Logger: logger})

	var attempts fplapi.AttemptObserver
	if cfg.MetricsTextfile != "" {
		out.Metrics = metrics.NewTextfile(cfg.MetricsTextfile, logger)
		attempts = out.Metrics
		deps.Observer = runObserver{metrics: out.Metrics}
	}

	client := fplapi.NewClient(clientConfig(cfg, logger, attempts))
	deps.Collector = usecase.NewCollectorService(client, idgen.NewUUIDGenerator(), usecase.CollectorConfig{
		HistoryCount:  cfg.HistoryCount,
		HistoryPolicy: cfg.HistorySelection,
		RequestDelay:  cfg.FPLRequestDelay,
	}, logger)

	if cfg.ArchiveEnabled {
		db, err := openDatabase(ctx, cfg.Database())
		if err != nil {
			return nil, fmt.Errorf("archive database: %w", err)
		}
		out.closers = append(out.closers, db.Close)
		deps.Archive = postgres.NewRawDataRepository(db)
		logger.Info("raw payload archive enabled", "database", cfg.Database().Name())
	}

	if cfg.Mirror.Enabled {
		mirror, err := objectstore.NewS3Mirror(ctx, objectstore.S3MirrorConfig{
			Bucket:          cfg.Mirror.Bucket,
			Prefix:          cfg.Mirror.Prefix,
			Endpoint:        cfg.Mirror.Endpoint,
			Region:          cfg.Mirror.Region,
			AccessKeyID:     cfg.Mirror.AccessKeyID,
			SecretAccessKey: cfg.Mirror.SecretAccessKey,
			Logger:          logger,
		})
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("artifact mirror: %w", err)
		}
		deps.Mirror = mirror
		logger.Info("artifact mirror enabled", "bucket", cfg.Mirror.Bucket, "prefix", cfg.Mirror.Prefix)
	}

	out.Runs = usecase.NewRunService(deps)
	return out, nil
}

// NewOffline wires only what dump validation and comparison read: the loader and the
// validation rules. Nothing is dialed, so an unreachable archive or bucket cannot fail it.
func NewOffline(cfg config.Config, logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Collector{Runs: usecase.NewRunService(offlineDeps(cfg, logger))}
}

func offlineDeps(cfg config.Config, logger *logging.Logger) usecase.RunServiceDeps {
	return usecase.RunServiceDeps{
		Loader: artifact.NewLoader(),
		Rules:  validationRules(cfg.Validation),
		Logger: logger,
	}
}

func clientConfig(cfg config.Config, logger *logging.Logger, observer fplapi.AttemptObserver) fplapi.ClientConfig {
	return fplapi.ClientConfig{
		BaseURL:      cfg.FPLBaseURL,
		UserAgent:    cfg.FPLUserAgent,
		Timeout:      cfg.FPLTimeout,
		Retry:        retryPolicy(cfg, cfg.FPLMaxAttempts),
		HistoryRetry: retryPolicy(cfg, cfg.FPLHistoryMaxAttempts),
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
		HistoryCircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLHistoryCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
		Observer: observer,
	}
}

func (c *Collector) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func retryPolicy(cfg config.Config, attempts int) resilience.RetryPolicy {
	return resilience.NormalizeRetryPolicy(resilience.RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: cfg.FPLBackoffInitial,
		MaxBackoff:     cfg.FPLBackoffMax,
		Multiplier:     2,
	})
}

func validationRules(cfg config.ValidationConfig) usecase.ValidationRules {
	rules := usecase.DefaultValidationRules()
	rules.PlayersMin = cfg.PlayersMin
	rules.PlayersMax = cfg.PlayersMax
	rules.Teams = cfg.Teams
	rules.FixturesMin = cfg.FixturesMin
	rules.FixturesMax = cfg.FixturesMax
	rules.Gameweeks = cfg.Gameweeks
	rules.HistoryCoverage = cfg.HistoryCoverage
	return rules
}
