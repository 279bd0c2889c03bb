package fpl

import "time"

const (
	ChangePrice     = "price"
	ChangeOwnership = "ownership"
	ChangeStatus    = "status"
	ChangeForm      = "form"
)

type PlayerChange struct {
	PlayerID int64   `json:"player_id"`
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Old      string  `json:"old"`
	New      string  `json:"new"`
	Delta    float64 `json:"delta"`
}

type PlayerRef struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	TeamID   int64  `json:"team_id"`
}

type FixtureResult struct {
	FixtureID int64  `json:"fixture_id"`
	Gameweek  int    `json:"gameweek"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// Comparison lists what changed between two collection runs.
type Comparison struct {
	OldRunID       string          `json:"old_run_id"`
	NewRunID       string          `json:"new_run_id"`
	OldCollectedAt time.Time       `json:"old_collected_at"`
	NewCollectedAt time.Time       `json:"new_collected_at"`
	Changes        []PlayerChange  `json:"changes"`
	NewPlayers     []PlayerRef     `json:"new_players"`
	RemovedPlayers []PlayerRef     `json:"removed_players"`
	NewResults     []FixtureResult `json:"new_results"`
}

func (c Comparison) ChangesOf(kind string) []PlayerChange {
	var out []PlayerChange
	for _, change := range c.Changes {
		if change.Kind == kind {
			out = append(out, change)
		}
	}
	return out
}

func (c Comparison) Empty() bool {
	return len(c.Changes) == 0 && len(c.NewPlayers) == 0 && len(c.RemovedPlayers) == 0 && len(c.NewResults) == 0
}
