package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ArtifactDump       = "dump"
	ArtifactPlayersCSV = "players_csv"
	ArtifactReport     = "report"
	ArtifactValidation = "validation"
)

// ArtifactKinds is the order artifacts are written in.
var ArtifactKinds = []string{ArtifactDump, ArtifactPlayersCSV, ArtifactReport, ArtifactValidation}

// ArtifactSet lists the files one run produced. Paths only holds artifacts that were
// actually written.
type ArtifactSet struct {
	Dir   string
	Date  string
	Stamp string
	Paths map[string]string
}

func (a ArtifactSet) Written() []string {
	out := make([]string, 0, len(a.Paths))
	for _, kind := range ArtifactKinds {
		if path, ok := a.Paths[kind]; ok {
			out = append(out, path)
		}
	}
	return out
}

type DatasetCollector interface {
	Collect(ctx context.Context) (CollectResult, error)
}

type ArtifactWriter interface {
	Write(ctx context.Context, ds fpl.Dataset, report validation.Report, outputDir string, at time.Time) (ArtifactSet, error)
}

type DatasetLoader interface {
	LoadDataset(ctx context.Context, path string) (fpl.Dataset, error)
	// LatestDumps returns up to n dump paths, oldest first: the newest dump of each of
	// the n most recent date folders.
	LatestDumps(ctx context.Context, outputDir string, n int) ([]string, error)
}

type ArtifactMirror interface {
	Mirror(ctx context.Context, set ArtifactSet) error
}

type RunObserver interface {
	ObserveRun(ctx context.Context, result RunResult)
}

type RunResult struct {
	RunID            string
	Report           validation.Report
	Artifacts        ArtifactSet
	Counts           map[string]int
	HistoryRequested int
	HistoryFetched   int
	HistoryFailures  map[int64]error
	CollectErr       error
	LiveGameweekErr  error
	WriteErr         error
	ArchiveErr       error
	MirrorErr        error
	StartedAt        time.Time
	Duration         time.Duration
}

// FailedHistoryIDs returns the players whose history is missing, ascending.
func (r RunResult) FailedHistoryIDs() []int64 {
	out := make([]int64, 0, len(r.HistoryFailures))
	for playerID := range r.HistoryFailures {
		out = append(out, playerID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type RunServiceDeps struct {
	Collector DatasetCollector
	Writer    ArtifactWriter
	Loader    DatasetLoader
	// Archive, Mirror and Observer are optional.
	Archive  rawdata.Repository
	Mirror   ArtifactMirror
	Observer RunObserver
	Rules    ValidationRules
	Logger   *logging.Logger
}

type RunService struct {
	collector DatasetCollector
	writer    ArtifactWriter
	loader    DatasetLoader
	archive   rawdata.Repository
	mirror    ArtifactMirror
	observer  RunObserver
	rules     ValidationRules
	logger    *logging.Logger
	now       func() time.Time
}

func NewRunService(deps RunServiceDeps) *RunService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &RunService{
		collector: deps.Collector,
		writer:    deps.Writer,
		loader:    deps.Loader,
		archive:   deps.Archive,
		mirror:    deps.Mirror,
		observer:  deps.Observer,
		rules:     deps.Rules,
		logger:    logger,
		now:       time.Now,
	}
}

// Run collects, validates and persists one dataset. The error is non-nil only for
// fatal conditions; write, archive and mirror failures are reported in the result.
func (s *RunService) Run(ctx context.Context, outputDir string) (RunResult, error) {
	ctx, span := startRunSpan(ctx, "collector.run", attribute.String("output.dir", outputDir))
	defer span.End()

	result := RunResult{StartedAt: s.now()}
	collected, err := s.collector.Collect(ctx)
	if err != nil {
		recordSpanError(span, err)
		result.CollectErr = err
		result.Duration = s.now().Sub(result.StartedAt)
		s.observe(ctx, result)
		return result, err
	}

	ds := collected.Dataset
	result.RunID = ds.Collection.RunID
	result.HistoryFailures = collected.HistoryFailures
	result.LiveGameweekErr = collected.LiveGameweekErr
	result.HistoryFetched, result.HistoryRequested, _ = ds.HistoryCoverage()
	result.Counts = map[string]int{
		"players":          len(ds.Players),
		"teams":            len(ds.Teams),
		"fixtures":         len(ds.Fixtures),
		"gameweeks":        len(ds.Gameweeks),
		"player_histories": len(ds.PlayerHistories),
	}

	logger := s.logger.With("run_id", result.RunID)
	result.Report = Validate(ds, s.rules)
	if result.Report.Passed {
		logger.InfoContext(ctx, "validation passed", "history_coverage", result.Report.HistoryCoverage)
	} else {
		for _, check := range result.Report.Failed() {
			logger.WarnContext(ctx, "validation check failed", "check", check.Name, "message", check.Message)
		}
	}

	result.Artifacts, result.WriteErr = s.writer.Write(ctx, ds, result.Report, outputDir, ds.Collection.CollectedAt)
	if result.WriteErr != nil {
		recordSpanError(span, result.WriteErr)
		logger.ErrorContext(ctx, "some artifacts failed to write", "error", result.WriteErr, "written", len(result.Artifacts.Paths))
	} else {
		logger.InfoContext(ctx, "artifacts written", "dir", result.Artifacts.Dir, "stamp", result.Artifacts.Stamp)
	}

	if s.archive != nil {
		if err := s.archive.UpsertMany(ctx, collected.RawPayloads); err != nil {
			result.ArchiveErr = fmt.Errorf("archive raw payloads: %w", err)
			logger.WarnContext(ctx, "raw payload archive failed", "error", err)
		} else {
			logger.InfoContext(ctx, "raw payloads archived", "count", len(collected.RawPayloads))
		}
	}

	if s.mirror != nil && len(result.Artifacts.Paths) > 0 {
		if err := s.mirror.Mirror(ctx, result.Artifacts); err != nil {
			result.MirrorErr = fmt.Errorf("mirror artifacts: %w", err)
			logger.WarnContext(ctx, "artifact mirror failed", "error", err)
		}
	}

	result.Duration = s.now().Sub(result.StartedAt)
	s.observe(ctx, result)
	return result, nil
}

// ValidateOnly re-validates a persisted dump without any network access.
func (s *RunService) ValidateOnly(ctx context.Context, path string) (validation.Report, error) {
	ctx, span := startRunSpan(ctx, "collector.validate_only", attribute.String("dump.path", path))
	defer span.End()

	if s.loader == nil {
		return validation.Report{}, fmt.Errorf("%w: dataset loader is not configured", ErrInvalidInput)
	}
	ds, err := s.loader.LoadDataset(ctx, path)
	if err != nil {
		recordSpanError(span, err)
		return validation.Report{}, fmt.Errorf("load dump %s: %w", path, err)
	}
	return Validate(ds, s.rules), nil
}

// CompareLatest diffs the newest dumps of the two most recent date folders.
func (s *RunService) CompareLatest(ctx context.Context, outputDir string) (fpl.Comparison, error) {
	ctx, span := startRunSpan(ctx, "collector.compare", attribute.String("output.dir", outputDir))
	defer span.End()

	if s.loader == nil {
		return fpl.Comparison{}, fmt.Errorf("%w: dataset loader is not configured", ErrInvalidInput)
	}
	paths, err := s.loader.LatestDumps(ctx, outputDir, 2)
	if err != nil {
		recordSpanError(span, err)
		return fpl.Comparison{}, fmt.Errorf("find dumps: %w", err)
	}
	if len(paths) < 2 {
		err := fmt.Errorf("%w: need dumps from two dates under %s, found %d", ErrNotFound, outputDir, len(paths))
		recordSpanError(span, err)
		return fpl.Comparison{}, err
	}

	older, err := s.loader.LoadDataset(ctx, paths[0])
	if err != nil {
		return fpl.Comparison{}, fmt.Errorf("load dump %s: %w", paths[0], err)
	}
	newer, err := s.loader.LoadDataset(ctx, paths[1])
	if err != nil {
		return fpl.Comparison{}, fmt.Errorf("load dump %s: %w", paths[1], err)
	}

	s.logger.InfoContext(ctx, "comparing dumps", "older", paths[0], "newer", paths[1])
	return CompareDatasets(older, newer), nil
}

func (s *RunService) observe(ctx context.Context, result RunResult) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveRun(ctx, result)
}
