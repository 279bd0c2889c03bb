package validation

import "time"

const (
	CheckPlayersCount   = "players_count"
	CheckTeamsCount     = "teams_count"
	CheckFixturesCount  = "fixtures_count"
	CheckGameweeksCount = "gameweeks_count"
	CheckPlayerSchema   = "player_schema"
	CheckHistoryCover   = "history_coverage"
)

// Check is the outcome of one independent validation category.
type Check struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Details  []string `json:"details,omitempty"`
}

// Report is built once from a dataset and never mutated. Passed is true only when
// every check passed.
type Report struct {
	Passed          bool      `json:"passed"`
	RunID           string    `json:"run_id"`
	CollectedAt     time.Time `json:"collected_at"`
	HistoryCoverage float64   `json:"history_coverage"`
	Checks          []Check   `json:"checks"`
}

func NewReport(runID string, collectedAt time.Time, coverage float64, checks []Check) Report {
	passed := len(checks) > 0
	for _, check := range checks {
		if !check.Passed {
			passed = false
			break
		}
	}
	return Report{
		Passed:          passed,
		RunID:           runID,
		CollectedAt:     collectedAt,
		HistoryCoverage: coverage,
		Checks:          checks,
	}
}

func (r Report) Check(name string) (Check, bool) {
	for _, check := range r.Checks {
		if check.Name == name {
			return check, true
		}
	}
	return Check{}, false
}

func (r Report) Failed() []Check {
	var out []Check
	for _, check := range r.Checks {
		if !check.Passed {
			out = append(out, check)
		}
	}
	return out
}
