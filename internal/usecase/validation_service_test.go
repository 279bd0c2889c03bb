package usecase

import (
	"testing"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
)

func TestValidate_HealthyDatasetPasses(t *testing.T) {
	t.Parallel()

	report := Validate(validDataset(), DefaultValidationRules())
	if !report.Passed {
		t.Fatalf("expected report to pass, failed checks: %+v", report.Failed())
	}
	if len(report.Checks) != 6 {
		t.Fatalf("unexpected check count: got=%d want=6", len(report.Checks))
	}
	if report.RunID != "run-1" {
		t.Fatalf("unexpected run id: %q", report.RunID)
	}
}

func TestValidate_EachCheckFailsIndependently(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(ds *fpl.Dataset)
		check  string
	}{
		{
			name:   "too few players",
			mutate: func(ds *fpl.Dataset) { ds.Players = ds.Players[:650] },
			check:  validation.CheckPlayersCount,
		},
		{
			name:   "too many players",
			mutate: func(ds *fpl.Dataset) { ds.Players = testPlayers(901) },
			check:  validation.CheckPlayersCount,
		},
		{
			name:   "missing team",
			mutate: func(ds *fpl.Dataset) { ds.Teams = ds.Teams[:19] },
			check:  validation.CheckTeamsCount,
		},
		{
			name:   "short fixture list",
			mutate: func(ds *fpl.Dataset) { ds.Fixtures = ds.Fixtures[:370] },
			check:  validation.CheckFixturesCount,
		},
		{
			name:   "missing gameweek",
			mutate: func(ds *fpl.Dataset) { ds.Gameweeks = ds.Gameweeks[:37] },
			check:  validation.CheckGameweeksCount,
		},
		{
			name: "player without web name",
			mutate: func(ds *fpl.Dataset) {
				delete(ds.Players[5], "web_name")
			},
			check: validation.CheckPlayerSchema,
		},
		{
			name: "history coverage below threshold",
			mutate: func(ds *fpl.Dataset) {
				delete(ds.PlayerHistories, "1")
			},
			check: validation.CheckHistoryCover,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ds := validDataset()
			tc.mutate(&ds)
			report := Validate(ds, DefaultValidationRules())
			if report.Passed {
				t.Fatalf("expected report to fail")
			}
			failed := report.Failed()
			if len(failed) != 1 || failed[0].Name != tc.check {
				t.Fatalf("expected only %s to fail, got %+v", tc.check, failed)
			}
		})
	}
}

func TestValidate_PlayerCountMessage(t *testing.T) {
	t.Parallel()

	ds := validDataset()
	ds.Players = ds.Players[:650]

	check, ok := Validate(ds, DefaultValidationRules()).Check(validation.CheckPlayersCount)
	if !ok {
		t.Fatalf("players count check missing")
	}
	if check.Actual != "650" || check.Expected != "685..900" {
		t.Fatalf("unexpected check values: actual=%s expected=%s", check.Actual, check.Expected)
	}
	if check.Message != "650 players collected, expected 685..900" {
		t.Fatalf("unexpected message: %q", check.Message)
	}
}

func TestValidate_SchemaDetailsAreCapped(t *testing.T) {
	t.Parallel()

	ds := validDataset()
	for i := 0; i < 25; i++ {
		delete(ds.Players[i], "form")
	}

	check, _ := Validate(ds, DefaultValidationRules()).Check(validation.CheckPlayerSchema)
	if check.Passed {
		t.Fatalf("expected schema check to fail")
	}
	if len(check.Details) != maxSchemaDetails {
		t.Fatalf("unexpected detail count: got=%d want=%d", len(check.Details), maxSchemaDetails)
	}
	if check.Details[0] != "player 1 missing form" {
		t.Fatalf("unexpected first detail: %q", check.Details[0])
	}
}

func TestValidate_CoverageBoundary(t *testing.T) {
	t.Parallel()

	ds := validDataset()
	requested := make([]int64, 0, 100)
	ds.PlayerHistories = map[string]fpl.PlayerHistory{}
	for i := int64(1); i <= 100; i++ {
		requested = append(requested, i)
		if i > 5 {
			ds.PlayerHistories[fpl.Key(i)] = fpl.PlayerHistory{}
		}
	}
	ds.Collection.HistoryRequested = requested

	report := Validate(ds, DefaultValidationRules())
	check, _ := report.Check(validation.CheckHistoryCover)
	if !check.Passed {
		t.Fatalf("expected 95 of 100 to meet the threshold: %+v", check)
	}
	if report.HistoryCoverage != 0.95 {
		t.Fatalf("unexpected coverage: got=%v want=0.95", report.HistoryCoverage)
	}

	delete(ds.PlayerHistories, "6")
	check, _ = Validate(ds, DefaultValidationRules()).Check(validation.CheckHistoryCover)
	if check.Passed {
		t.Fatalf("expected 94 of 100 to fail the threshold")
	}
}

func TestValidate_NoHistoryRequested(t *testing.T) {
	t.Parallel()

	ds := validDataset()
	ds.Collection.HistoryRequested = nil
	ds.PlayerHistories = nil

	check, _ := Validate(ds, DefaultValidationRules()).Check(validation.CheckHistoryCover)
	if !check.Passed || check.Message != "no player histories requested" {
		t.Fatalf("unexpected coverage check: %+v", check)
	}
}
