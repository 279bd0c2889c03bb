package usecase

import (
	"sort"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
)

const upcomingGameweekSpan = 5

// ResolveCurrentGameweek returns the first gameweek flagged current, else the first
// flagged next, else 1.
func ResolveCurrentGameweek(gameweeks []fpl.Gameweek) (int, string) {
	for _, gw := range gameweeks {
		if gw.IsCurrent() && gw.ID() > 0 {
			return gw.ID(), fpl.GameweekSourceCurrent
		}
	}
	for _, gw := range gameweeks {
		if gw.IsNext() && gw.ID() > 0 {
			return gw.ID(), fpl.GameweekSourceNext
		}
	}
	return 1, fpl.GameweekSourceFallback
}

// BuildTeamStats aggregates finished fixtures per team. A finished fixture with a
// missing score counts that side as 0 goals.
func BuildTeamStats(teams []fpl.Team, fixtures []fpl.Fixture, players []fpl.Player) map[string]fpl.TeamStats {
	stats := make(map[int64]*fpl.TeamStats, len(teams))
	get := func(teamID int64) *fpl.TeamStats {
		item, ok := stats[teamID]
		if !ok {
			item = &fpl.TeamStats{TeamID: teamID}
			stats[teamID] = item
		}
		return item
	}

	for _, team := range teams {
		if team.ID() <= 0 {
			continue
		}
		item := get(team.ID())
		item.Name = team.Name()
		item.ShortName = team.ShortName()
	}

	for _, fixture := range fixtures {
		if !fixture.Finished() || fixture.HomeTeamID() <= 0 || fixture.AwayTeamID() <= 0 {
			continue
		}
		homeGoals := intOrZero(fixture.HomeScore())
		awayGoals := intOrZero(fixture.AwayScore())

		home := get(fixture.HomeTeamID())
		home.HomeGames++
		applyResult(home, homeGoals, awayGoals)

		away := get(fixture.AwayTeamID())
		away.AwayGames++
		applyResult(away, awayGoals, homeGoals)
	}

	for _, player := range players {
		if player.TeamID() <= 0 {
			continue
		}
		item := get(player.TeamID())
		item.SquadSize++
		item.PlayerPoints += player.TotalPoints()
	}

	out := make(map[string]fpl.TeamStats, len(stats))
	for teamID, item := range stats {
		out[fpl.Key(teamID)] = *item
	}
	return out
}

func applyResult(item *fpl.TeamStats, scored, conceded int) {
	item.GamesPlayed++
	item.GoalsScored += scored
	item.GoalsConceded += conceded
	if conceded == 0 {
		item.CleanSheets++
	}
	switch {
	case scored > conceded:
		item.Wins++
		item.LeaguePoints += 3
	case scored == conceded:
		item.Draws++
		item.LeaguePoints++
	default:
		item.Losses++
	}
}

// BuildUpcomingSchedule lists gameweeks current..current+4 that exist, ordered by id,
// each with its fixtures ordered by kickoff then fixture id.
func BuildUpcomingSchedule(gameweeks []fpl.Gameweek, fixtures []fpl.Fixture, current int) []fpl.GameweekSchedule {
	if current <= 0 {
		return []fpl.GameweekSchedule{}
	}
	last := current + upcomingGameweekSpan - 1

	byGameweek := make(map[int][]fpl.Fixture)
	for _, fixture := range fixtures {
		event := fixture.Event()
		if event == nil || *event < current || *event > last {
			continue
		}
		byGameweek[*event] = append(byGameweek[*event], fixture)
	}

	ordered := make([]fpl.Gameweek, 0, upcomingGameweekSpan)
	for _, gw := range gameweeks {
		if gw.ID() >= current && gw.ID() <= last {
			ordered = append(ordered, gw)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	out := make([]fpl.GameweekSchedule, 0, len(ordered))
	for _, gw := range ordered {
		items := byGameweek[gw.ID()]
		sort.SliceStable(items, func(i, j int) bool {
			left, right := items[i].KickoffTime(), items[j].KickoffTime()
			if !left.Equal(right) {
				if left.IsZero() {
					return false
				}
				if right.IsZero() {
					return true
				}
				return left.Before(right)
			}
			return items[i].ID() < items[j].ID()
		})
		if items == nil {
			items = []fpl.Fixture{}
		}
		out = append(out, fpl.GameweekSchedule{
			Gameweek:     gw.ID(),
			Name:         gw.Name(),
			DeadlineTime: gw.DeadlineTimeRaw(),
			Fixtures:     items,
		})
	}
	return out
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
