package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
	"github.com/qchockey/lheqstats/internal/domain/player"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/domain/team"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// StatsService aggregates per-team and per-player season statistics from a
// frozen snapshot. Only games played to the end count; every other status is
// left out of the totals.
type StatsService struct {
	logger *logging.Logger
}

func NewStatsService(logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{logger: logger}
}

// TeamSeason builds the standings table. Every team observed in the season
// gets a row, teams without a finished game keep zeroed totals. Rows come
// back in standings order.
func (s *StatsService) TeamSeason(ctx context.Context, snap *season.Snapshot) ([]team.SeasonStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.TeamSeason")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return nil, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}

	rows := make(map[string]*team.SeasonStats, 32)
	ensure := func(teamID string) *team.SeasonStats {
		if row, ok := rows[teamID]; ok {
			return row
		}
		row := &team.SeasonStats{
			TeamID:  teamID,
			Name:    snap.NameOf(teamID),
			LogoURL: snap.LogoOf(teamID),
		}
		rows[teamID] = row
		return row
	}
	for _, teamID := range snap.TeamIDs() {
		ensure(teamID)
	}

	for _, g := range snap.FinalGames() {
		home := ensure(g.HomeTeamID)
		away := ensure(g.AwayTeamID)
		homeScore, awayScore := resolveGameScores(g)

		home.GamesPlayed++
		away.GamesPlayed++
		home.GoalsFor += homeScore
		home.GoalsAgainst += awayScore
		away.GoalsFor += awayScore
		away.GoalsAgainst += homeScore

		switch {
		case homeScore > awayScore:
			home.Wins++
			home.Home.Wins++
			away.Losses++
			away.Away.Losses++
		case awayScore > homeScore:
			away.Wins++
			away.Away.Wins++
			home.Losses++
			home.Home.Losses++
		default:
			home.Ties++
			home.Home.Ties++
			away.Ties++
			away.Away.Ties++
		}

		for _, p := range g.Penalties {
			offending := ensure(p.TeamID)
			served := ensure(g.OpponentID(p.TeamID))
			offending.PenaltyMinutes += p.Duration.PenaltyMinutes()
			offending.PenaltyKillChances++
			served.PowerplayOpportunities++
		}

		for _, goal := range g.Goals {
			scoring := ensure(goal.TeamID)
			conceding := ensure(g.OpponentID(goal.TeamID))
			if goal.Powerplay {
				scoring.PowerplayGoals++
				conceding.PowerplayGoalsAgainst++
			}
			if goal.Shorthanded {
				scoring.ShorthandedGoals++
			}
		}
	}

	out := make([]team.SeasonStats, 0, len(rows))
	for _, row := range rows {
		row.Points = 2*row.Wins + row.Ties
		row.GoalDifferential = row.GoalsFor - row.GoalsAgainst
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("team season stats team=%s: %w", row.TeamID, err)
		}
		out = append(out, *row)
	}
	sortTeamStandings(out)

	s.logger.InfoContext(ctx, "team season stats built", "teams", len(out), "games", len(snap.FinalGames()))
	return out, nil
}

// PlayerSeason builds the per-player season table. Skater counting comes
// from rosters, goals and penalties; goalie appearances, decisions and goals
// against come from the supplied credits so the starting-goalie feed is the
// single source of truth for who actually played.
func (s *StatsService) PlayerSeason(ctx context.Context, snap *season.Snapshot, credits []goalie.GameCredit) ([]player.SeasonStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.PlayerSeason")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return nil, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}

	rows := make(map[player.Key]*player.SeasonStats, 256)
	// Jersey numbers are known only from rosters; events reference players
	// by name. numbersByName lets event credits land on the rostered row.
	numbersByName := make(map[string]string, 256)

	nameKey := func(teamID, name string) string {
		return teamID + "\x00" + strings.ToLower(strings.TrimSpace(name))
	}
	ensure := func(teamID, name, number string, pos game.Position) *player.SeasonStats {
		if number == "" {
			number = numbersByName[nameKey(teamID, name)]
		}
		key := player.NewKey(teamID, name, number)
		if row, ok := rows[key]; ok {
			return row
		}
		row := &player.SeasonStats{
			TeamID:   key.TeamID,
			TeamName: snap.NameOf(key.TeamID),
			Name:     key.Name,
			Number:   key.Number,
			Position: pos,
		}
		rows[key] = row
		return row
	}

	for _, g := range snap.FinalGames() {
		for _, side := range []struct {
			teamID string
			roster []game.RosterEntry
		}{
			{teamID: g.HomeTeamID, roster: g.HomeRoster},
			{teamID: g.AwayTeamID, roster: g.AwayRoster},
		} {
			for _, entry := range side.roster {
				if entry.Number != "" {
					numbersByName[nameKey(side.teamID, entry.Name)] = entry.Number
				}
				row := ensure(side.teamID, entry.Name, entry.Number, entry.Position)
				row.Position = entry.Position
				if entry.Position != game.PositionGoalie {
					// Goalie appearances are counted from starter credits,
					// not from being dressed.
					row.GamesPlayed++
				}
			}
		}

		for _, goal := range g.Goals {
			scorer := ensure(goal.TeamID, goal.Scorer.Name, "", game.PositionForward)
			scorer.Goals++
			if goal.Powerplay {
				scorer.PowerplayGoals++
			}
			if goal.Shorthanded {
				scorer.ShorthandedGoals++
			}
			for _, assist := range goal.Assists {
				helper := ensure(goal.TeamID, assist.Name, "", game.PositionForward)
				helper.Assists++
				if goal.Powerplay {
					helper.PowerplayAssists++
				}
				if goal.Shorthanded {
					helper.ShorthandedAssists++
				}
			}
		}

		for _, p := range g.Penalties {
			if strings.TrimSpace(p.Offender.Name) == "" {
				continue
			}
			offender := ensure(p.TeamID, p.Offender.Name, "", game.PositionForward)
			offender.PenaltyMinutes += p.Duration.PenaltyMinutes()
			if p.Duration.Kind == game.PenaltyKindMatch {
				offender.MatchPenalties++
			}
		}
	}

	for _, credit := range credits {
		row := ensure(credit.TeamID, credit.Name, credit.Number, game.PositionGoalie)
		row.Position = game.PositionGoalie
		row.GamesPlayed++
		row.GoalsAgainst += credit.GoalsAgainst
		switch {
		case credit.Win:
			row.Wins++
		case credit.Loss:
			row.Losses++
		case credit.Tie:
			row.Ties++
		}
	}

	out := make([]player.SeasonStats, 0, len(rows))
	for _, row := range rows {
		if row.IsGoalie() {
			row.Points = 0
			row.GoalsAgainstAverage = player.ComputeGAA(row.GoalsAgainst, row.GamesPlayed)
		} else {
			row.Points = row.Goals + row.Assists
		}
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].Number < out[j].Number
	})

	s.logger.InfoContext(ctx, "player season stats built", "players", len(out), "goalie_credits", len(credits))
	return out, nil
}

// resolveGameScores prefers the sheet's explicit final score and falls back
// to counting goal events when either side is missing.
func resolveGameScores(g game.Record) (int, int) {
	if g.HomeScore != nil && g.AwayScore != nil {
		return *g.HomeScore, *g.AwayScore
	}
	home, away := 0, 0
	for _, goal := range g.Goals {
		switch goal.TeamID {
		case g.HomeTeamID:
			home++
		case g.AwayTeamID:
			away++
		}
	}
	return home, away
}

func sortTeamStandings(rows []team.SeasonStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifferential != rows[j].GoalDifferential {
			return rows[i].GoalDifferential > rows[j].GoalDifferential
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].TeamID < rows[j].TeamID
	})
}
