package usecase

import (
	"testing"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
)

func TestResolveCurrentGameweek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		gameweeks  []fpl.Gameweek
		wantID     int
		wantSource string
	}{
		{name: "current flag", gameweeks: testGameweeks(38, 7), wantID: 7, wantSource: fpl.GameweekSourceCurrent},
		{
			name: "next flag before season",
			gameweeks: []fpl.Gameweek{
				{"id": float64(1), "is_current": false, "is_next": true},
				{"id": float64(2), "is_current": false, "is_next": false},
			},
			wantID:     1,
			wantSource: fpl.GameweekSourceNext,
		},
		{
			name:       "no flags",
			gameweeks:  []fpl.Gameweek{{"id": float64(4)}, {"id": float64(5)}},
			wantID:     1,
			wantSource: fpl.GameweekSourceFallback,
		},
		{name: "empty", gameweeks: nil, wantID: 1, wantSource: fpl.GameweekSourceFallback},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gotID, gotSource := ResolveCurrentGameweek(tc.gameweeks)
			if gotID != tc.wantID || gotSource != tc.wantSource {
				t.Fatalf("unexpected gameweek: got=%d/%s want=%d/%s", gotID, gotSource, tc.wantID, tc.wantSource)
			}
		})
	}
}

func TestBuildTeamStats(t *testing.T) {
	t.Parallel()

	teams := testTeams(3)
	fixtures := []fpl.Fixture{
		testFixture(1, 1, 1, 2, true, float64(2), float64(0)),
		testFixture(2, 2, 2, 3, true, float64(1), float64(1)),
		testFixture(3, 3, 3, 1, true, float64(3), nil),
		testFixture(4, 4, 1, 3, false, nil, nil),
	}
	players := []fpl.Player{
		testPlayer(10, 1, 50, "1.0"),
		testPlayer(11, 1, 30, "1.0"),
		testPlayer(12, 3, 70, "1.0"),
	}

	stats := BuildTeamStats(teams, fixtures, players)
	if len(stats) != 3 {
		t.Fatalf("unexpected stats count: got=%d want=3", len(stats))
	}

	team1 := stats["1"]
	if team1.GamesPlayed != 2 || team1.Wins != 1 || team1.Losses != 1 || team1.Draws != 0 {
		t.Fatalf("unexpected team 1 record: %+v", team1)
	}
	if team1.GoalsScored != 2 || team1.GoalsConceded != 3 || team1.GoalDifference() != -1 {
		t.Fatalf("unexpected team 1 goals: %+v", team1)
	}
	if team1.CleanSheets != 1 || team1.LeaguePoints != 3 {
		t.Fatalf("unexpected team 1 clean sheets or points: %+v", team1)
	}
	if team1.SquadSize != 2 || team1.PlayerPoints != 80 {
		t.Fatalf("unexpected team 1 squad totals: %+v", team1)
	}
	if team1.HomeGames != 1 || team1.AwayGames != 1 {
		t.Fatalf("unexpected team 1 venue split: %+v", team1)
	}

	team3 := stats["3"]
	if team3.Wins != 1 || team3.Draws != 1 || team3.LeaguePoints != 4 {
		t.Fatalf("unexpected team 3 record: %+v", team3)
	}
	// a missing score on a finished fixture counts as 0
	if team3.GoalsScored != 4 || team3.GoalsConceded != 1 || team3.CleanSheets != 1 {
		t.Fatalf("unexpected team 3 goals: %+v", team3)
	}
	if team3.Name != "Team 3" || team3.ShortName != "T03" {
		t.Fatalf("unexpected team 3 names: %+v", team3)
	}
}

func TestBuildUpcomingSchedule(t *testing.T) {
	t.Parallel()

	gameweeks := testGameweeks(38, 36)
	late := testFixture(100, 36, 1, 2, false, nil, nil)
	late["kickoff_time"] = "2026-05-10T16:30:00Z"
	early := testFixture(101, 36, 3, 4, false, nil, nil)
	early["kickoff_time"] = "2026-05-09T11:30:00Z"
	unscheduled := testFixture(99, 36, 5, 6, false, nil, nil)
	unscheduled["kickoff_time"] = nil
	blank := testFixture(102, 0, 7, 8, false, nil, nil)
	blank["event"] = nil

	schedule := BuildUpcomingSchedule(gameweeks, []fpl.Fixture{late, unscheduled, early, blank}, 36)
	if len(schedule) != 3 {
		t.Fatalf("expected gameweeks 36..38 only, got %d", len(schedule))
	}
	if schedule[0].Gameweek != 36 || schedule[2].Gameweek != 38 {
		t.Fatalf("unexpected gameweek order: %d..%d", schedule[0].Gameweek, schedule[2].Gameweek)
	}

	got := schedule[0].Fixtures
	if len(got) != 3 {
		t.Fatalf("unexpected fixture count: got=%d want=3", len(got))
	}
	if got[0].ID() != 101 || got[1].ID() != 100 || got[2].ID() != 99 {
		t.Fatalf("unexpected fixture order: %d, %d, %d", got[0].ID(), got[1].ID(), got[2].ID())
	}
	if schedule[1].Fixtures == nil {
		t.Fatalf("expected empty fixture list for gameweek without fixtures")
	}
}
