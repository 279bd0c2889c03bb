package app

import (
	"context"

	"github.com/riskibarqy/fpl-collector/internal/platform/metrics"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

// runObserver feeds finished runs into the metrics textfile.
type runObserver struct {
	metrics *metrics.Textfile
}

func (o runObserver) ObserveRun(ctx context.Context, result usecase.RunResult) {
	o.metrics.RecordRun(ctx, runSnapshot(result))
}

func runSnapshot(result usecase.RunResult) metrics.RunSnapshot {
	checks := make(map[string]bool, len(result.Report.Checks))
	for _, check := range result.Report.Checks {
		checks[check.Name] = check.Passed
	}
	return metrics.RunSnapshot{
		StartedAt:        result.StartedAt,
		Duration:         result.Duration,
		Counts:           result.Counts,
		HistoryCoverage:  result.Report.HistoryCoverage,
		HistoryFailures:  len(result.HistoryFailures),
		Checks:           checks,
		ValidationPassed: result.Report.Passed,
		Failed: map[string]bool{
			metrics.StageCollect:      result.CollectErr != nil,
			metrics.StageLiveGameweek: result.LiveGameweekErr != nil,
			metrics.StageWrite:        result.WriteErr != nil,
			metrics.StageArchive:      result.ArchiveErr != nil,
			metrics.StageMirror:       result.MirrorErr != nil,
		},
	}
}
