package artifact

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
	"github.com/shopspring/decimal"
	"github.com/valyala/bytebufferpool"
)

const (
	reportWidth      = 80
	topPerformersMax = 15
	priceMoversMax   = 15
)

var statusLabels = map[string]string{
	"a": "available",
	"d": "doubtful",
	"i": "injured",
	"s": "suspended",
	"u": "unavailable",
	"n": "not in squad",
}

// WriteReport renders the human-readable summary of one run.
func WriteReport(out io.Writer, ds fpl.Dataset, report validation.Report) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	r := reportBuilder{
		buf:       buf,
		ds:        ds,
		teams:     ds.TeamsByID(),
		positions: ds.PositionShortNames(),
	}
	r.overview(report)
	r.topPerformers()
	r.priceChanges()
	r.injuries()
	r.upcomingFixtures()
	r.teamTable()
	r.gameweeks()
	r.validationSummary(report)

	_, err := buf.WriteTo(out)
	return err
}

type reportBuilder struct {
	buf       *bytebufferpool.ByteBuffer
	ds        fpl.Dataset
	teams     map[int64]fpl.Team
	positions map[int64]string
}

func (r reportBuilder) printf(format string, args ...any) {
	fmt.Fprintf(r.buf, format, args...)
}

func (r reportBuilder) section(title string) {
	r.printf("\n%s\n%s\n%s\n", strings.Repeat("=", reportWidth), title, strings.Repeat("-", reportWidth))
}

func (r reportBuilder) overview(report validation.Report) {
	meta := r.ds.Collection
	r.printf("%s\n", strings.Repeat("=", reportWidth))
	r.printf("FANTASY PREMIER LEAGUE DATA COLLECTION\n")
	r.printf("Collected: %s\n", meta.CollectedAt.UTC().Format(time.RFC3339))
	r.printf("Run ID: %s\n", meta.RunID)
	r.printf("%s\n", strings.Repeat("=", reportWidth))

	r.section("OVERVIEW")
	r.printf("Current gameweek: %d (%s)\n", meta.CurrentGameweek, meta.CurrentGameweekSource)
	r.printf("Managers: %d\n", meta.TotalManagers)
	r.printf("Players: %d | Teams: %d | Fixtures: %d | Gameweeks: %d\n",
		len(r.ds.Players), len(r.ds.Teams), len(r.ds.Fixtures), len(r.ds.Gameweeks))
	fetched, requested, ratio := r.ds.HistoryCoverage()
	r.printf("Player histories: %d of %d (%.1f%%, policy %s)\n", fetched, requested, ratio*100, meta.HistoryPolicy)
	if meta.LiveGameweekError != "" {
		r.printf("Live gameweek: unavailable (%s)\n", meta.LiveGameweekError)
	}
	status := "PASSED"
	if !report.Passed {
		status = "FAILED"
	}
	r.printf("Validation: %s\n", status)
}

func (r reportBuilder) topPerformers() {
	r.section("TOP PERFORMERS")
	players := append([]fpl.Player(nil), r.ds.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].TotalPoints() != players[j].TotalPoints() {
			return players[i].TotalPoints() > players[j].TotalPoints()
		}
		return players[i].ID() < players[j].ID()
	})
	if len(players) > topPerformersMax {
		players = players[:topPerformersMax]
	}

	r.printf("%-4s %-22s %-5s %-4s %8s %6s %6s %8s\n", "#", "Player", "Team", "Pos", "Price", "Pts", "Form", "Owned")
	for idx, player := range players {
		r.printf("%-4d %-22s %-5s %-4s %8s %6d %6.1f %7.1f%%\n",
			idx+1,
			truncate(player.WebName(), 22),
			r.teamShort(player.TeamID()),
			r.position(player.ElementType()),
			price(player.NowCost()),
			player.TotalPoints(),
			player.Form(),
			player.SelectedByPercent(),
		)
	}
}

func (r reportBuilder) priceChanges() {
	r.section("PRICE CHANGES THIS GAMEWEEK")
	var risers, fallers []fpl.Player
	for _, player := range r.ds.Players {
		switch {
		case player.CostChangeEvent() > 0:
			risers = append(risers, player)
		case player.CostChangeEvent() < 0:
			fallers = append(fallers, player)
		}
	}
	byChange := func(items []fpl.Player, rising bool) {
		sort.SliceStable(items, func(i, j int) bool {
			left, right := items[i].CostChangeEvent(), items[j].CostChangeEvent()
			if left != right {
				if rising {
					return left > right
				}
				return left < right
			}
			return items[i].ID() < items[j].ID()
		})
	}
	byChange(risers, true)
	byChange(fallers, false)

	if len(risers) == 0 && len(fallers) == 0 {
		r.printf("No price changes.\n")
		return
	}
	r.priceList("Risers", risers)
	r.priceList("Fallers", fallers)
}

func (r reportBuilder) priceList(title string, players []fpl.Player) {
	r.printf("%s (%d):\n", title, len(players))
	if len(players) > priceMoversMax {
		players = players[:priceMoversMax]
	}
	for _, player := range players {
		r.printf("  %-22s %-5s %8s (%s, season %s)\n",
			truncate(player.WebName(), 22),
			r.teamShort(player.TeamID()),
			price(player.NowCost()),
			signedPrice(player.CostChangeEvent()),
			signedPrice(player.CostChangeStart()),
		)
	}
}

func (r reportBuilder) injuries() {
	r.section("INJURIES AND AVAILABILITY")
	var flagged []fpl.Player
	for _, player := range r.ds.Players {
		if !player.Available() {
			flagged = append(flagged, player)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		left, right := r.teamShort(flagged[i].TeamID()), r.teamShort(flagged[j].TeamID())
		if left != right {
			return left < right
		}
		return flagged[i].WebName() < flagged[j].WebName()
	})

	if len(flagged) == 0 {
		r.printf("All players available.\n")
		return
	}
	for _, player := range flagged {
		chance := "-"
		if value := player.ChanceOfPlayingNextRound(); value != nil {
			chance = fmt.Sprintf("%d%%", *value)
		}
		label, ok := statusLabels[player.Status()]
		if !ok {
			label = player.Status()
		}
		r.printf("  %-5s %-22s %-13s %4s  %s\n",
			r.teamShort(player.TeamID()),
			truncate(player.WebName(), 22),
			label,
			chance,
			player.News(),
		)
	}
}

func (r reportBuilder) upcomingFixtures() {
	r.section("UPCOMING FIXTURES")
	if len(r.ds.Next5Gameweeks) == 0 {
		r.printf("No upcoming gameweeks.\n")
		return
	}
	for _, gw := range r.ds.Next5Gameweeks {
		r.printf("\n%s (deadline %s)\n", gw.Name, gw.DeadlineTime)
		if len(gw.Fixtures) == 0 {
			r.printf("  no fixtures scheduled\n")
			continue
		}
		for _, fixture := range gw.Fixtures {
			kickoff := "TBC"
			if at := fixture.KickoffTime(); !at.IsZero() {
				kickoff = at.Format("Mon 02 Jan 15:04")
			}
			r.printf("  %-16s %-5s vs %-5s  difficulty %d/%d\n",
				kickoff,
				r.teamShort(fixture.HomeTeamID()),
				r.teamShort(fixture.AwayTeamID()),
				fixture.HomeDifficulty(),
				fixture.AwayDifficulty(),
			)
		}
	}
}

func (r reportBuilder) teamTable() {
	r.section("TEAMS")
	stats := make([]fpl.TeamStats, 0, len(r.ds.TeamStats))
	for _, item := range r.ds.TeamStats {
		stats = append(stats, item)
	}
	sort.Slice(stats, func(i, j int) bool {
		left, right := stats[i], stats[j]
		if left.LeaguePoints != right.LeaguePoints {
			return left.LeaguePoints > right.LeaguePoints
		}
		if left.GoalDifference() != right.GoalDifference() {
			return left.GoalDifference() > right.GoalDifference()
		}
		if left.GoalsScored != right.GoalsScored {
			return left.GoalsScored > right.GoalsScored
		}
		return left.TeamID < right.TeamID
	})

	r.printf("%-22s %3s %3s %3s %3s %4s %4s %4s %4s %4s  %s\n",
		"Team", "P", "W", "D", "L", "GF", "GA", "GD", "CS", "Pts", "Strength A/D (H|A)")
	for _, item := range stats {
		team := r.teams[item.TeamID]
		attackHome, attackAway := team.StrengthAttack()
		defenceHome, defenceAway := team.StrengthDefence()
		r.printf("%-22s %3d %3d %3d %3d %4d %4d %+4d %4d %4d  %d|%d / %d|%d\n",
			truncate(item.Name, 22),
			item.GamesPlayed, item.Wins, item.Draws, item.Losses,
			item.GoalsScored, item.GoalsConceded, item.GoalDifference(), item.CleanSheets, item.LeaguePoints,
			attackHome, attackAway, defenceHome, defenceAway,
		)
	}
}

func (r reportBuilder) gameweeks() {
	r.section("GAMEWEEKS")
	for _, gw := range r.ds.Gameweeks {
		var flags []string
		if gw.IsCurrent() {
			flags = append(flags, "current")
		}
		if gw.IsNext() {
			flags = append(flags, "next")
		}
		if gw.Finished() {
			flags = append(flags, "finished")
		}
		if len(flags) == 0 {
			flags = append(flags, "future")
		}
		line := fmt.Sprintf("%-14s [%s]", gw.Name(), strings.Join(flags, ", "))
		if gw.Finished() || gw.IsCurrent() {
			line += fmt.Sprintf(" avg %d, high %d", gw.AverageEntryScore(), gw.HighestScore())
		}
		r.printf("%s\n", line)
	}
}

func (r reportBuilder) validationSummary(report validation.Report) {
	r.section("VALIDATION")
	for _, check := range report.Checks {
		mark := "PASS"
		if !check.Passed {
			mark = "FAIL"
		}
		r.printf("[%s] %-18s %s\n", mark, check.Name, check.Message)
		for _, detail := range check.Details {
			r.printf("       - %s\n", detail)
		}
	}
}

func (r reportBuilder) teamShort(teamID int64) string {
	if team, ok := r.teams[teamID]; ok && team.ShortName() != "" {
		return team.ShortName()
	}
	return "???"
}

func (r reportBuilder) position(elementType int64) string {
	if label := r.positions[elementType]; label != "" {
		return label
	}
	return "?"
}

// price renders now_cost (tenths of a million) as e.g. "£7.5m".
func price(tenths int) string {
	return "£" + decimal.New(int64(tenths), -1).StringFixed(1) + "m"
}

func signedPrice(tenths int) string {
	value := decimal.New(int64(tenths), -1).StringFixed(1)
	if tenths > 0 {
		value = "+" + value
	}
	return value
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "."
}
