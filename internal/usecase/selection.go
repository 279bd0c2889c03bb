package usecase

import (
	"sort"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
)

const (
	HistoryPolicyTotalPoints = "total_points"
	HistoryPolicyOwnership   = "ownership"
)

// SelectHistoryTargets picks the n players whose histories are fetched.
//
// total_points: total points descending, then player id ascending.
// ownership: selected_by_percent descending, then player id ascending.
//
// The result depends only on the player list, n and the policy. n <= 0 selects nobody;
// n above the player count selects everyone.
func SelectHistoryTargets(players []fpl.Player, n int, policy string) []int64 {
	if n <= 0 || len(players) == 0 {
		return []int64{}
	}

	type candidate struct {
		id     int64
		points int
		owned  float64
	}
	seen := make(map[int64]struct{}, len(players))
	candidates := make([]candidate, 0, len(players))
	for _, player := range players {
		playerID := player.ID()
		if playerID <= 0 {
			continue
		}
		if _, dup := seen[playerID]; dup {
			continue
		}
		seen[playerID] = struct{}{}
		candidates = append(candidates, candidate{
			id:     playerID,
			points: player.TotalPoints(),
			owned:  player.SelectedByPercent(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		left, right := candidates[i], candidates[j]
		switch policy {
		case HistoryPolicyOwnership:
			if left.owned != right.owned {
				return left.owned > right.owned
			}
		default:
			if left.points != right.points {
				return left.points > right.points
			}
		}
		return left.id < right.id
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]int64, 0, n)
	for _, item := range candidates[:n] {
		out = append(out, item.id)
	}
	return out
}
