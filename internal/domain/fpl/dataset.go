package fpl

import "time"

const (
	SourceName = "fpl"

	GameweekSourceCurrent  = "current"
	GameweekSourceNext     = "next"
	GameweekSourceFallback = "fallback"
)

// Dataset is one complete collection run. It is built once by the collector
// and only read afterwards.
type Dataset struct {
	Players         []Player                 `json:"players"`
	Teams           []Team                   `json:"teams"`
	Fixtures        []Fixture                `json:"fixtures"`
	Gameweeks       []Gameweek               `json:"gameweeks"`
	LiveGameweek    Record                   `json:"live_gameweek"`
	PlayerHistories map[string]PlayerHistory `json:"player_histories"`
	TeamStats       map[string]TeamStats     `json:"team_stats"`
	Next5Gameweeks  []GameweekSchedule       `json:"next_5_gameweeks"`
	Positions       []Record                 `json:"positions"`
	GameSettings    Record                   `json:"game_settings"`
	Phases          []Record                 `json:"phases"`
	Chips           []Record                 `json:"chips"`
	Collection      CollectionMeta           `json:"collection"`
}

type CollectionMeta struct {
	RunID                 string            `json:"run_id"`
	Source                string            `json:"source"`
	CollectedAt           time.Time         `json:"collected_at"`
	CurrentGameweek       int               `json:"current_gameweek"`
	CurrentGameweekSource string            `json:"current_gameweek_source"`
	TotalManagers         int64             `json:"total_managers"`
	HistoryPolicy         string            `json:"history_policy"`
	HistoryRequested      []int64           `json:"history_requested"`
	HistoryFailures       map[string]string `json:"history_failures"`
	LiveGameweekError     string            `json:"live_gameweek_error,omitempty"`
}

// TeamStats is derived from finished fixtures and the player list.
type TeamStats struct {
	TeamID        int64  `json:"team_id"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	GamesPlayed   int    `json:"games_played"`
	HomeGames     int    `json:"home_games"`
	AwayGames     int    `json:"away_games"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	GoalsScored   int    `json:"total_goals_scored"`
	GoalsConceded int    `json:"total_goals_conceded"`
	CleanSheets   int    `json:"clean_sheets"`
	LeaguePoints  int    `json:"league_points"`
	SquadSize     int    `json:"squad_size"`
	PlayerPoints  int    `json:"total_player_points"`
}

func (s TeamStats) GoalDifference() int {
	return s.GoalsScored - s.GoalsConceded
}

// GameweekSchedule lists the fixtures of one upcoming gameweek.
type GameweekSchedule struct {
	Gameweek     int       `json:"gameweek"`
	Name         string    `json:"name"`
	DeadlineTime string    `json:"deadline_time"`
	Fixtures     []Fixture `json:"fixtures"`
}

// PositionShortNames maps element_type ids to labels such as GKP or FWD.
func (d Dataset) PositionShortNames() map[int64]string {
	out := make(map[int64]string, len(d.Positions))
	for _, position := range d.Positions {
		out[position.Int64("id")] = position.String("singular_name_short")
	}
	return out
}

func (d Dataset) TeamsByID() map[int64]Team {
	out := make(map[int64]Team, len(d.Teams))
	for _, team := range d.Teams {
		out[team.ID()] = team
	}
	return out
}

// HistoryCoverage returns fetched/requested histories. Nothing requested counts as full coverage.
func (d Dataset) HistoryCoverage() (fetched, requested int, ratio float64) {
	requested = len(d.Collection.HistoryRequested)
	if requested == 0 {
		return 0, 0, 1
	}
	for _, playerID := range d.Collection.HistoryRequested {
		if _, ok := d.PlayerHistories[Key(playerID)]; ok {
			fetched++
		}
	}
	return fetched, requested, float64(fetched) / float64(requested)
}
