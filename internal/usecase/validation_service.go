package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
)

const maxSchemaDetails = 10

// ValidationRules holds the expected dataset shape. A zero PlayersMax or FixturesMax
// means no upper bound.
type ValidationRules struct {
	PlayersMin           int
	PlayersMax           int
	Teams                int
	FixturesMin          int
	FixturesMax          int
	Gameweeks            int
	HistoryCoverage      float64
	RequiredPlayerFields []string
}

func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		PlayersMin:           685,
		PlayersMax:           900,
		Teams:                20,
		FixturesMin:          380,
		FixturesMax:          380,
		Gameweeks:            38,
		HistoryCoverage:      0.95,
		RequiredPlayerFields: fpl.RequiredPlayerFields,
	}
}

// Validate runs every check independently and in a fixed order. It reads the dataset
// only, so validating a reloaded dump gives the same report.
func Validate(ds fpl.Dataset, rules ValidationRules) validation.Report {
	if rules.RequiredPlayerFields == nil {
		rules.RequiredPlayerFields = fpl.RequiredPlayerFields
	}

	_, _, coverage := ds.HistoryCoverage()
	checks := []validation.Check{
		checkRange(validation.CheckPlayersCount, "players", len(ds.Players), rules.PlayersMin, rules.PlayersMax),
		checkExact(validation.CheckTeamsCount, "teams", len(ds.Teams), rules.Teams),
		checkRange(validation.CheckFixturesCount, "fixtures", len(ds.Fixtures), rules.FixturesMin, rules.FixturesMax),
		checkExact(validation.CheckGameweeksCount, "gameweeks", len(ds.Gameweeks), rules.Gameweeks),
		checkPlayerSchema(ds.Players, rules.RequiredPlayerFields),
		checkHistoryCoverage(ds, rules.HistoryCoverage),
	}

	return validation.NewReport(ds.Collection.RunID, ds.Collection.CollectedAt, coverage, checks)
}

func checkRange(name, entity string, actual, minimum, maximum int) validation.Check {
	expected := fmt.Sprintf(">= %d", minimum)
	if maximum > 0 {
		expected = fmt.Sprintf("%d..%d", minimum, maximum)
		if maximum == minimum {
			expected = strconv.Itoa(minimum)
		}
	}

	passed := actual >= minimum && (maximum <= 0 || actual <= maximum)
	message := fmt.Sprintf("%d %s collected", actual, entity)
	if !passed {
		message = fmt.Sprintf("%d %s collected, expected %s", actual, entity, expected)
	}
	return validation.Check{
		Name:     name,
		Passed:   passed,
		Message:  message,
		Expected: expected,
		Actual:   strconv.Itoa(actual),
	}
}

func checkExact(name, entity string, actual, expected int) validation.Check {
	passed := actual == expected
	message := fmt.Sprintf("%d %s collected", actual, entity)
	if !passed {
		message = fmt.Sprintf("%d %s collected, expected %d", actual, entity, expected)
	}
	return validation.Check{
		Name:     name,
		Passed:   passed,
		Message:  message,
		Expected: strconv.Itoa(expected),
		Actual:   strconv.Itoa(actual),
	}
}

func checkPlayerSchema(players []fpl.Player, required []string) validation.Check {
	incomplete := 0
	var details []string
	for idx, player := range players {
		missing := fpl.MissingFields(player, required)
		if len(missing) == 0 {
			continue
		}
		incomplete++
		if len(details) < maxSchemaDetails {
			label := fmt.Sprintf("index %d", idx)
			if player.Has("id") {
				label = "player " + strconv.FormatInt(player.ID(), 10)
			}
			details = append(details, fmt.Sprintf("%s missing %s", label, strings.Join(missing, ", ")))
		}
	}

	check := validation.Check{
		Name:     validation.CheckPlayerSchema,
		Passed:   incomplete == 0,
		Expected: fmt.Sprintf("%d required fields on every player", len(required)),
		Actual:   fmt.Sprintf("%d incomplete players", incomplete),
		Details:  details,
	}
	if incomplete == 0 {
		check.Message = fmt.Sprintf("all %d players have the required fields", len(players))
	} else {
		check.Message = fmt.Sprintf("%d of %d players are missing required fields", incomplete, len(players))
	}
	return check
}

func checkHistoryCoverage(ds fpl.Dataset, threshold float64) validation.Check {
	fetched, requested, ratio := ds.HistoryCoverage()
	passed := ratio >= threshold

	check := validation.Check{
		Name:     validation.CheckHistoryCover,
		Passed:   passed,
		Expected: fmt.Sprintf(">= %.2f", threshold),
		Actual:   fmt.Sprintf("%.2f", ratio),
	}
	switch {
	case requested == 0:
		check.Message = "no player histories requested"
	case passed:
		check.Message = fmt.Sprintf("%d of %d requested histories fetched", fetched, requested)
	default:
		check.Message = fmt.Sprintf("%d of %d requested histories fetched, below threshold %.2f", fetched, requested, threshold)
	}

	for _, playerID := range ds.Collection.HistoryRequested {
		if len(check.Details) >= maxSchemaDetails {
			break
		}
		if _, ok := ds.PlayerHistories[fpl.Key(playerID)]; !ok {
			check.Details = append(check.Details, "missing history for player "+fpl.Key(playerID))
		}
	}
	return check
}
