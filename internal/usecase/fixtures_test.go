package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
)

func testPlayer(id int64, team int64, points int, ownership string) fpl.Player {
	return fpl.Player{
		"id":                  float64(id),
		"web_name":            fmt.Sprintf("Player%d", id),
		"first_name":          "First",
		"second_name":         fmt.Sprintf("Last%d", id),
		"team":                float64(team),
		"element_type":        float64(3),
		"status":              "a",
		"now_cost":            float64(55),
		"selected_by_percent": ownership,
		"total_points":        float64(points),
		"form":                "2.0",
		"points_per_game":     "3.1",
		"minutes":             float64(900),
		"goals_scored":        float64(1),
		"assists":             float64(2),
		"clean_sheets":        float64(3),
		"news":                "",
	}
}

func testPlayers(n int) []fpl.Player {
	out := make([]fpl.Player, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, testPlayer(int64(i), int64(i%20)+1, i%150, "1.0"))
	}
	return out
}

func testTeams(n int) []fpl.Team {
	out := make([]fpl.Team, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fpl.Team{
			"id":         float64(i),
			"name":       fmt.Sprintf("Team %d", i),
			"short_name": fmt.Sprintf("T%02d", i),
		})
	}
	return out
}

func testGameweeks(n, current int) []fpl.Gameweek {
	out := make([]fpl.Gameweek, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fpl.Gameweek{
			"id":            float64(i),
			"name":          fmt.Sprintf("Gameweek %d", i),
			"deadline_time": time.Date(2025, 8, 15, 17, 30, 0, 0, time.UTC).AddDate(0, 0, 7*(i-1)).Format(time.RFC3339),
			"is_current":    i == current,
			"is_next":       i == current+1,
			"finished":      i < current,
		})
	}
	return out
}

func testFixture(id int64, event int, home, away int64, finished bool, homeScore, awayScore any) fpl.Fixture {
	return fpl.Fixture{
		"id":           float64(id),
		"event":        float64(event),
		"team_h":       float64(home),
		"team_a":       float64(away),
		"finished":     finished,
		"team_h_score": homeScore,
		"team_a_score": awayScore,
		"kickoff_time": time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(event-1)).Format(time.RFC3339),
	}
}

func testFixtures(n int) []fpl.Fixture {
	out := make([]fpl.Fixture, 0, n)
	for i := 1; i <= n; i++ {
		event := (i-1)/10 + 1
		home := int64((i-1)%20) + 1
		away := int64(i%20) + 1
		out = append(out, testFixture(int64(i), event, home, away, false, nil, nil))
	}
	return out
}

// validDataset has the shape a healthy mid-season run produces.
func validDataset() fpl.Dataset {
	players := testPlayers(700)
	requested := []int64{1, 2, 3, 4}
	histories := map[string]fpl.PlayerHistory{}
	for _, playerID := range requested {
		histories[fpl.Key(playerID)] = fpl.PlayerHistory{Fixtures: []fpl.Record{}, History: []fpl.Record{}, HistoryPast: []fpl.Record{}}
	}
	return fpl.Dataset{
		Players:         players,
		Teams:           testTeams(20),
		Fixtures:        testFixtures(380),
		Gameweeks:       testGameweeks(38, 10),
		LiveGameweek:    fpl.Record{},
		PlayerHistories: histories,
		Collection: fpl.CollectionMeta{
			RunID:            "run-1",
			CollectedAt:      time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC),
			HistoryRequested: requested,
		},
	}
}
