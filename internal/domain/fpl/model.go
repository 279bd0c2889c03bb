package fpl

import (
	"strings"
	"time"
)

// Player is one entry of bootstrap-static "elements".
type Player Record

func (p Player) record() Record { return Record(p) }

func (p Player) ID() int64 { return p.record().Int64("id") }
func (p Player) TeamID() int64 { return p.record().Int64("team") }
func (p Player) ElementType() int64 { return p.record().Int64("element_type") }
func (p Player) WebName() string { return p.record().String("web_name") }
func (p Player) NowCost() int { return p.record().Int("now_cost") }
func (p Player) CostChangeEvent() int { return p.record().Int("cost_change_event") }
func (p Player) CostChangeStart() int { return p.record().Int("cost_change_start") }
func (p Player) TotalPoints() int { return p.record().Int("total_points") }
func (p Player) Form() float64 { return p.record().Float("form") }
func (p Player) PointsPerGame() float64 { return p.record().Float("points_per_game") }
func (p Player) SelectedByPercent() float64 { return p.record().Float("selected_by_percent") }
func (p Player) Status() string { return p.record().String("status") }
func (p Player) News() string { return p.record().String("news") }
func (p Player) ChanceOfPlayingNextRound() *int { return p.record().IntPtr("chance_of_playing_next_round") }
func (p Player) Has(key string) bool { return p.record().Has(key) }
func (p Player) Value(key string) any { return p.record().Value(key) }

func (p Player) FullName() string {
	name := strings.TrimSpace(p.record().String("first_name") + " " + p.record().String("second_name"))
	if name == "" {
		return p.WebName()
	}
	return name
}

// Available reports status "a" (available). Other statuses: d doubtful, i injured,
// s suspended, u unavailable, n not in squad.
func (p Player) Available() bool {
	return p.Status() == "" || p.Status() == "a"
}

// Team is one entry of bootstrap-static "teams".
type Team Record

func (t Team) ID() int64 { return Record(t).Int64("id") }
func (t Team) Name() string { return Record(t).String("name") }
func (t Team) ShortName() string { return Record(t).String("short_name") }
func (t Team) Position() int { return Record(t).Int("position") }
func (t Team) Strength() int { return Record(t).Int("strength") }

func (t Team) StrengthAttack() (home, away int) {
	return Record(t).Int("strength_attack_home"), Record(t).Int("strength_attack_away")
}

func (t Team) StrengthDefence() (home, away int) {
	return Record(t).Int("strength_defence_home"), Record(t).Int("strength_defence_away")
}

// Fixture is one entry of the fixtures endpoint.
type Fixture Record

func (f Fixture) ID() int64 { return Record(f).Int64("id") }
func (f Fixture) Event() *int { return Record(f).IntPtr("event") }
func (f Fixture) HomeTeamID() int64 { return Record(f).Int64("team_h") }
func (f Fixture) AwayTeamID() int64 { return Record(f).Int64("team_a") }
func (f Fixture) HomeScore() *int { return Record(f).IntPtr("team_h_score") }
func (f Fixture) AwayScore() *int { return Record(f).IntPtr("team_a_score") }
func (f Fixture) HomeDifficulty() int { return Record(f).Int("team_h_difficulty") }
func (f Fixture) AwayDifficulty() int { return Record(f).Int("team_a_difficulty") }
func (f Fixture) Started() bool { return Record(f).Bool("started") }
func (f Fixture) Finished() bool { return Record(f).Bool("finished") }
func (f Fixture) KickoffTimeRaw() string { return Record(f).String("kickoff_time") }

// KickoffTime is zero when the fixture is not yet scheduled.
func (f Fixture) KickoffTime() time.Time {
	return parseAPITime(f.KickoffTimeRaw())
}

// Gameweek is one entry of bootstrap-static "events".
type Gameweek Record

func (g Gameweek) ID() int { return Record(g).Int("id") }
func (g Gameweek) Name() string { return Record(g).String("name") }
func (g Gameweek) DeadlineTimeRaw() string { return Record(g).String("deadline_time") }
func (g Gameweek) IsCurrent() bool { return Record(g).Bool("is_current") }
func (g Gameweek) IsNext() bool { return Record(g).Bool("is_next") }
func (g Gameweek) Finished() bool { return Record(g).Bool("finished") }
func (g Gameweek) AverageEntryScore() int { return Record(g).Int("average_entry_score") }
func (g Gameweek) HighestScore() int { return Record(g).Int("highest_score") }
func (g Gameweek) MostSelected() int64 { return Record(g).Int64("most_selected") }
func (g Gameweek) MostCaptained() int64 { return Record(g).Int64("most_captained") }
func (g Gameweek) DeadlineTime() time.Time { return parseAPITime(g.DeadlineTimeRaw()) }

// PlayerHistory is the element-summary payload of one player.
type PlayerHistory struct {
	Fixtures    []Record `json:"fixtures"`
	History     []Record `json:"history"`
	HistoryPast []Record `json:"history_past"`
}

// Bootstrap is the decoded bootstrap-static payload.
type Bootstrap struct {
	Events       []Gameweek `json:"events"`
	Teams        []Team     `json:"teams"`
	Elements     []Player   `json:"elements"`
	ElementTypes []Record   `json:"element_types"`
	GameSettings Record     `json:"game_settings"`
	Phases       []Record   `json:"phases"`
	Chips        []Record   `json:"chips"`
	TotalPlayers int64      `json:"total_players"`
}

func parseAPITime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
