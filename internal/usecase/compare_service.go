package usecase

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/shopspring/decimal"
)

const (
	ownershipSwingThreshold = 2.0
	formSwingThreshold      = 1.0
)

// CompareDatasets lists player and fixture changes from older to newer.
// Changes are ordered by kind, then by absolute delta descending, then player id.
func CompareDatasets(older, newer fpl.Dataset) fpl.Comparison {
	out := fpl.Comparison{
		OldRunID:       older.Collection.RunID,
		NewRunID:       newer.Collection.RunID,
		OldCollectedAt: older.Collection.CollectedAt,
		NewCollectedAt: newer.Collection.CollectedAt,
		Changes:        []fpl.PlayerChange{},
		NewPlayers:     []fpl.PlayerRef{},
		RemovedPlayers: []fpl.PlayerRef{},
		NewResults:     []fpl.FixtureResult{},
	}

	oldPlayers := indexPlayers(older.Players)
	newPlayers := indexPlayers(newer.Players)

	for playerID, current := range newPlayers {
		previous, ok := oldPlayers[playerID]
		if !ok {
			out.NewPlayers = append(out.NewPlayers, playerRef(current))
			continue
		}
		out.Changes = append(out.Changes, diffPlayer(previous, current)...)
	}
	for playerID, previous := range oldPlayers {
		if _, ok := newPlayers[playerID]; !ok {
			out.RemovedPlayers = append(out.RemovedPlayers, playerRef(previous))
		}
	}

	kindOrder := map[string]int{fpl.ChangePrice: 0, fpl.ChangeOwnership: 1, fpl.ChangeStatus: 2, fpl.ChangeForm: 3}
	sort.Slice(out.Changes, func(i, j int) bool {
		left, right := out.Changes[i], out.Changes[j]
		if left.Kind != right.Kind {
			return kindOrder[left.Kind] < kindOrder[right.Kind]
		}
		if math.Abs(left.Delta) != math.Abs(right.Delta) {
			return math.Abs(left.Delta) > math.Abs(right.Delta)
		}
		return left.PlayerID < right.PlayerID
	})
	sortRefs(out.NewPlayers)
	sortRefs(out.RemovedPlayers)

	out.NewResults = newlyFinished(older.Fixtures, newer.Fixtures, newer.TeamsByID())
	return out
}

func diffPlayer(previous, current fpl.Player) []fpl.PlayerChange {
	var out []fpl.PlayerChange
	name := current.WebName()

	if previous.NowCost() != current.NowCost() {
		out = append(out, fpl.PlayerChange{
			PlayerID: current.ID(),
			Name:     name,
			Kind:     fpl.ChangePrice,
			Old:      formatPrice(previous.NowCost()),
			New:      formatPrice(current.NowCost()),
			Delta:    decimal.New(int64(current.NowCost()-previous.NowCost()), -1).InexactFloat64(),
		})
	}
	if delta := current.SelectedByPercent() - previous.SelectedByPercent(); math.Abs(delta) > ownershipSwingThreshold {
		out = append(out, fpl.PlayerChange{
			PlayerID: current.ID(),
			Name:     name,
			Kind:     fpl.ChangeOwnership,
			Old:      strconv.FormatFloat(previous.SelectedByPercent(), 'f', 1, 64) + "%",
			New:      strconv.FormatFloat(current.SelectedByPercent(), 'f', 1, 64) + "%",
			Delta:    delta,
		})
	}
	if previous.Status() != current.Status() {
		out = append(out, fpl.PlayerChange{
			PlayerID: current.ID(),
			Name:     name,
			Kind:     fpl.ChangeStatus,
			Old:      previous.Status(),
			New:      current.Status(),
		})
	}
	if delta := current.Form() - previous.Form(); math.Abs(delta) > formSwingThreshold {
		out = append(out, fpl.PlayerChange{
			PlayerID: current.ID(),
			Name:     name,
			Kind:     fpl.ChangeForm,
			Old:      strconv.FormatFloat(previous.Form(), 'f', 1, 64),
			New:      strconv.FormatFloat(current.Form(), 'f', 1, 64),
			Delta:    delta,
		})
	}
	return out
}

func newlyFinished(older, newer []fpl.Fixture, teams map[int64]fpl.Team) []fpl.FixtureResult {
	finishedBefore := make(map[int64]bool, len(older))
	for _, fixture := range older {
		finishedBefore[fixture.ID()] = fixture.Finished()
	}

	out := []fpl.FixtureResult{}
	for _, fixture := range newer {
		if !fixture.Finished() || finishedBefore[fixture.ID()] {
			continue
		}
		result := fpl.FixtureResult{
			FixtureID: fixture.ID(),
			HomeTeam:  teamLabel(teams, fixture.HomeTeamID()),
			AwayTeam:  teamLabel(teams, fixture.AwayTeamID()),
			HomeScore: intOrZero(fixture.HomeScore()),
			AwayScore: intOrZero(fixture.AwayScore()),
		}
		if event := fixture.Event(); event != nil {
			result.Gameweek = *event
		}
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gameweek != out[j].Gameweek {
			return out[i].Gameweek < out[j].Gameweek
		}
		return out[i].FixtureID < out[j].FixtureID
	})
	return out
}

func indexPlayers(players []fpl.Player) map[int64]fpl.Player {
	out := make(map[int64]fpl.Player, len(players))
	for _, player := range players {
		if player.ID() > 0 {
			out[player.ID()] = player
		}
	}
	return out
}

func playerRef(player fpl.Player) fpl.PlayerRef {
	return fpl.PlayerRef{PlayerID: player.ID(), Name: player.WebName(), TeamID: player.TeamID()}
}

func sortRefs(items []fpl.PlayerRef) {
	sort.Slice(items, func(i, j int) bool { return items[i].PlayerID < items[j].PlayerID })
}

func teamLabel(teams map[int64]fpl.Team, teamID int64) string {
	if team, ok := teams[teamID]; ok && team.ShortName() != "" {
		return team.ShortName()
	}
	return fmt.Sprintf("team %d", teamID)
}

// formatPrice renders now_cost (tenths of a million) as e.g. "£14.5m".
func formatPrice(nowCost int) string {
	return "£" + decimal.New(int64(nowCost), -1).StringFixed(1) + "m"
}
