package app

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
	"github.com/riskibarqy/fpl-collector/internal/platform/metrics"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

func TestRunSnapshot(t *testing.T) {
	result := usecase.RunResult{
		StartedAt: time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC),
		Duration:  42 * time.Second,
		Counts:    map[string]int{"players": 700},
		Report: validation.Report{
			Passed:          false,
			HistoryCoverage: 0.95,
			Checks: []validation.Check{
				{Name: validation.CheckPlayersCount, Passed: true},
				{Name: validation.CheckTeamsCount, Passed: false},
			},
		},
		HistoryFailures: map[int64]error{1: errors.New("boom"), 2: errors.New("boom")},
		MirrorErr:       errors.New("access denied"),
	}

	got := runSnapshot(result)
	if got.HistoryFailures != 2 || got.HistoryCoverage != 0.95 || got.ValidationPassed {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if !got.Checks[validation.CheckPlayersCount] || got.Checks[validation.CheckTeamsCount] {
		t.Fatalf("unexpected checks: %+v", got.Checks)
	}
	if !got.Failed[metrics.StageMirror] || got.Failed[metrics.StageCollect] || got.Failed[metrics.StageWrite] {
		t.Fatalf("unexpected stage failures: %+v", got.Failed)
	}
}
