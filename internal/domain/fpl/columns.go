package fpl

import "sort"

// playerColumns is the attribute order of bootstrap-static elements.
var playerColumns = []string{
	"id", "code", "web_name", "first_name", "second_name", "team", "team_code", "element_type",
	"status", "news", "news_added", "chance_of_playing_next_round", "chance_of_playing_this_round",
	"can_transact", "can_select", "removed", "special", "in_dreamteam", "dreamteam_count",
	"now_cost", "cost_change_event", "cost_change_event_fall", "cost_change_start", "cost_change_start_fall",
	"selected_by_percent", "transfers_in", "transfers_in_event", "transfers_out", "transfers_out_event",
	"total_points", "event_points", "points_per_game", "form", "ep_this", "ep_next", "value_form", "value_season",
	"minutes", "starts", "goals_scored", "assists", "clean_sheets", "goals_conceded", "own_goals",
	"penalties_saved", "penalties_missed", "yellow_cards", "red_cards", "saves", "bonus", "bps",
	"clearances_blocks_interceptions", "recoveries", "tackles", "defensive_contribution",
	"influence", "creativity", "threat", "ict_index",
	"expected_goals", "expected_assists", "expected_goal_involvements", "expected_goals_conceded",
	"expected_goals_per_90", "expected_assists_per_90", "expected_goal_involvements_per_90",
	"expected_goals_conceded_per_90", "goals_conceded_per_90", "saves_per_90", "starts_per_90",
	"clean_sheets_per_90", "defensive_contribution_per_90",
	"influence_rank", "influence_rank_type", "creativity_rank", "creativity_rank_type",
	"threat_rank", "threat_rank_type", "ict_index_rank", "ict_index_rank_type",
	"now_cost_rank", "now_cost_rank_type", "form_rank", "form_rank_type",
	"points_per_game_rank", "points_per_game_rank_type", "selected_rank", "selected_rank_type",
	"corners_and_indirect_freekicks_order", "corners_and_indirect_freekicks_text",
	"direct_freekicks_order", "direct_freekicks_text", "penalties_order", "penalties_text",
	"squad_number", "photo", "region", "team_join_date", "birth_date", "has_temporary_code", "opta_code",
}

// RequiredPlayerFields must be present on every player for the dataset to pass
// schema validation.
var RequiredPlayerFields = []string{
	"id", "web_name", "first_name", "second_name", "team", "element_type", "status",
	"now_cost", "selected_by_percent", "total_points", "form", "points_per_game",
	"minutes", "goals_scored", "assists", "clean_sheets", "news",
}

// PlayerColumns returns the CSV header for players: the known attribute order first,
// then any attribute the API added, sorted by name. The result depends only on the
// set of keys, never on map iteration order.
func PlayerColumns(players []Player) []string {
	out := make([]string, 0, len(playerColumns)+8)
	out = append(out, playerColumns...)

	known := make(map[string]struct{}, len(playerColumns))
	for _, column := range playerColumns {
		known[column] = struct{}{}
	}

	extra := make(map[string]struct{})
	for _, player := range players {
		for key := range player {
			if _, ok := known[key]; ok {
				continue
			}
			extra[key] = struct{}{}
		}
	}

	extras := make([]string, 0, len(extra))
	for key := range extra {
		extras = append(extras, key)
	}
	sort.Strings(extras)

	return append(out, extras...)
}

// MissingFields lists required keys absent from the player, in declaration order.
func MissingFields(player Player, required []string) []string {
	var missing []string
	for _, key := range required {
		if !player.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}
