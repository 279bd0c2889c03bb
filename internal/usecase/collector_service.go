package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
	idgen "github.com/riskibarqy/fpl-collector/internal/platform/id"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/platform/resilience"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	StageBootstrap       = "bootstrap"
	StageFixtures        = "fixtures"
	StagePlayerHistories = "player_histories"
)

type CollectorConfig struct {
	HistoryCount  int
	HistoryPolicy string
	// RequestDelay is waited between two history calls.
	RequestDelay time.Duration
}

// CollectResult is the outcome of one successful assembly. Per-player failures
// are reported here, not as an error.
type CollectResult struct {
	Dataset         fpl.Dataset
	RawPayloads     []rawdata.Payload
	HistoryFailures map[int64]error
	LiveGameweekErr error
}

type CollectorService struct {
	provider fpl.Provider
	ids      idgen.Generator
	cfg      CollectorConfig
	logger   *logging.Logger
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

func NewCollectorService(provider fpl.Provider, ids idgen.Generator, cfg CollectorConfig, logger *logging.Logger) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	if cfg.HistoryPolicy == "" {
		cfg.HistoryPolicy = HistoryPolicyTotalPoints
	}
	return &CollectorService{
		provider: provider,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sleep:    resilience.Sleep,
	}
}

// Collect fetches every endpoint in dependency order and assembles the dataset.
// Bootstrap and fixtures failures are fatal; live gameweek and per-player history
// failures are recorded and the run continues.
func (s *CollectorService) Collect(ctx context.Context) (CollectResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.Collect",
		attribute.Int("history.count", s.cfg.HistoryCount),
		attribute.String("history.policy", s.cfg.HistoryPolicy),
	)
	defer span.End()

	runID, err := s.ids.NewID()
	if err != nil {
		return CollectResult{}, fmt.Errorf("generate run id: %w", err)
	}
	collectedAt := s.now().UTC()
	logger := s.logger.With("run_id", runID)
	payloads := make([]rawdata.Payload, 0, s.cfg.HistoryCount+3)

	bootstrap, payload, err := s.provider.FetchBootstrap(ctx)
	if err != nil {
		fatal := &FatalAssemblyError{Stage: StageBootstrap, Err: err}
		recordSpanError(span, fatal)
		logger.ErrorContext(ctx, "bootstrap fetch failed, aborting run", "error", err)
		return CollectResult{}, fatal
	}
	payloads = appendPayload(payloads, payload)
	logger.InfoContext(ctx, "bootstrap fetched",
		"players", len(bootstrap.Elements),
		"teams", len(bootstrap.Teams),
		"gameweeks", len(bootstrap.Events),
	)

	currentGW, gwSource := ResolveCurrentGameweek(bootstrap.Events)
	if gwSource == fpl.GameweekSourceFallback {
		logger.WarnContext(ctx, "no gameweek flagged current or next, falling back", "gameweek", currentGW)
	} else {
		logger.InfoContext(ctx, "current gameweek resolved", "gameweek", currentGW, "source", gwSource)
	}

	fixtures, payload, err := s.provider.FetchFixtures(ctx, 0)
	if err != nil {
		fatal := &FatalAssemblyError{Stage: StageFixtures, Err: err}
		recordSpanError(span, fatal)
		logger.ErrorContext(ctx, "fixtures fetch failed, aborting run", "error", err)
		return CollectResult{}, fatal
	}
	payloads = appendPayload(payloads, payload)
	logger.InfoContext(ctx, "fixtures fetched", "fixtures", len(fixtures))

	live, payload, liveErr := s.provider.FetchLiveGameweek(ctx, currentGW)
	if liveErr != nil {
		logger.WarnContext(ctx, "live gameweek fetch failed, continuing without it", "gameweek", currentGW, "error", liveErr)
		live = fpl.Record{}
	} else {
		payloads = appendPayload(payloads, payload)
	}
	if live == nil {
		live = fpl.Record{}
	}

	targets := SelectHistoryTargets(bootstrap.Elements, s.cfg.HistoryCount, s.cfg.HistoryPolicy)
	histories, historyPayloads, failures, err := s.collectHistories(ctx, logger, targets)
	if err != nil {
		fatal := &FatalAssemblyError{Stage: StagePlayerHistories, Err: err}
		recordSpanError(span, fatal)
		return CollectResult{}, fatal
	}
	payloads = append(payloads, historyPayloads...)

	failureMessages := make(map[string]string, len(failures))
	for playerID, failure := range failures {
		failureMessages[fpl.Key(playerID)] = failure.Error()
	}

	dataset := fpl.Dataset{
		Players:         nonNil(bootstrap.Elements),
		Teams:           nonNil(bootstrap.Teams),
		Fixtures:        nonNil(fixtures),
		Gameweeks:       nonNil(bootstrap.Events),
		LiveGameweek:    live,
		PlayerHistories: histories,
		TeamStats:       BuildTeamStats(bootstrap.Teams, fixtures, bootstrap.Elements),
		Next5Gameweeks:  BuildUpcomingSchedule(bootstrap.Events, fixtures, currentGW),
		Positions:       nonNil(bootstrap.ElementTypes),
		GameSettings:    bootstrap.GameSettings,
		Phases:          nonNil(bootstrap.Phases),
		Chips:           nonNil(bootstrap.Chips),
		Collection: fpl.CollectionMeta{
			RunID:                 runID,
			Source:                fpl.SourceName,
			CollectedAt:           collectedAt,
			CurrentGameweek:       currentGW,
			CurrentGameweekSource: gwSource,
			TotalManagers:         bootstrap.TotalPlayers,
			HistoryPolicy:         s.cfg.HistoryPolicy,
			HistoryRequested:      targets,
			HistoryFailures:       failureMessages,
		},
	}
	if dataset.GameSettings == nil {
		dataset.GameSettings = fpl.Record{}
	}
	if liveErr != nil {
		dataset.Collection.LiveGameweekError = liveErr.Error()
	}

	for i := range payloads {
		payloads[i].RunID = runID
	}

	logger.InfoContext(ctx, "dataset assembled",
		"players", len(dataset.Players),
		"fixtures", len(dataset.Fixtures),
		"histories_requested", len(targets),
		"histories_fetched", len(histories),
		"history_failures", len(failures),
	)

	return CollectResult{
		Dataset:         dataset,
		RawPayloads:     payloads,
		HistoryFailures: failures,
		LiveGameweekErr: liveErr,
	}, nil
}

// collectHistories fetches one player at a time. A failure or panic for one player is
// recorded and never stops the loop; only context cancellation does.
func (s *CollectorService) collectHistories(
	ctx context.Context,
	logger *logging.Logger,
	targets []int64,
) (map[string]fpl.PlayerHistory, []rawdata.Payload, map[int64]error, error) {
	histories := make(map[string]fpl.PlayerHistory, len(targets))
	payloads := make([]rawdata.Payload, 0, len(targets))
	failures := make(map[int64]error)

	for idx, playerID := range targets {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}
		if idx > 0 && s.cfg.RequestDelay > 0 {
			if err := s.sleep(ctx, s.cfg.RequestDelay); err != nil {
				return nil, nil, nil, err
			}
		}

		var (
			history fpl.PlayerHistory
			payload rawdata.Payload
			err     error
		)
		var catcher panics.Catcher
		catcher.Try(func() {
			history, payload, err = s.provider.FetchPlayerSummary(ctx, playerID)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			err = recovered.AsError()
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, nil, ctx.Err()
			}
			failures[playerID] = &PartialHistoryError{PlayerID: playerID, Err: err}
			logger.WarnContext(ctx, "player history fetch failed", "player_id", playerID, "error", err)
			continue
		}

		histories[fpl.Key(playerID)] = normalizeHistory(history)
		payloads = appendPayload(payloads, payload)

		if done := idx + 1; done%10 == 0 || done == len(targets) {
			logger.DebugContext(ctx, "player histories progress", "done", done, "total", len(targets))
		}
	}

	return histories, payloads, failures, nil
}

func normalizeHistory(history fpl.PlayerHistory) fpl.PlayerHistory {
	history.Fixtures = nonNil(history.Fixtures)
	history.History = nonNil(history.History)
	history.HistoryPast = nonNil(history.HistoryPast)
	return history
}

func appendPayload(items []rawdata.Payload, payload rawdata.Payload) []rawdata.Payload {
	if payload.Empty() {
		return items
	}
	return append(items, payload)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
