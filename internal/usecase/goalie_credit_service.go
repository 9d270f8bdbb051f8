package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/platform/similarity"
)

// GoalieCreditService resolves who gets goalie credit for each finished
// game. The starting-goalie extraction output overrides the roster: in a
// game it covers, only the named starters keep the appearance, while games
// it does not cover credit every dressed goalie.
type GoalieCreditService struct {
	starters goalie.StarterRepository
	logger   *logging.Logger
}

func NewGoalieCreditService(starters goalie.StarterRepository, logger *logging.Logger) *GoalieCreditService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GoalieCreditService{starters: starters, logger: logger}
}

// CreditReport tallies how the starter feed was applied across the season.
type CreditReport struct {
	ExplicitGames     int `json:"explicit_games"`
	FallbackGames     int `json:"fallback_games"`
	UnmatchedStarters int `json:"unmatched_starters"`
}

// LoadStarters reads the extraction feed. Absence of the feed is reported
// as a wrapped ErrDependencyUnavailable so callers can degrade to the
// roster fallback instead of failing the run.
func (s *GoalieCreditService) LoadStarters(ctx context.Context) (goalie.StarterMap, error) {
	if s.starters == nil {
		return goalie.StarterMap{}, fmt.Errorf("%w: starting-goalie source not configured", ErrDependencyUnavailable)
	}
	m, err := s.starters.GetStarterMap(ctx)
	if err != nil {
		return goalie.StarterMap{}, fmt.Errorf("%w: load starter map: %v", ErrDependencyUnavailable, err)
	}
	if m == nil {
		m = goalie.StarterMap{}
	}
	return m, nil
}

// Credits walks every finished game and emits one credit per goalie per
// side. Starters are matched to a side by name against the game rosters;
// a starter found on neither roster is dropped with a warning.
func (s *GoalieCreditService) Credits(ctx context.Context, snap *season.Snapshot, starters goalie.StarterMap) ([]goalie.GameCredit, CreditReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalieCreditService.Credits")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return nil, CreditReport{}, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}
	if starters == nil {
		starters = goalie.StarterMap{}
	}

	var report CreditReport
	credits := make([]goalie.GameCredit, 0, snap.Len()*2)
	for _, g := range snap.FinalGames() {
		refs, explicit := starters.StartersFor(g.ID)
		homeScore, awayScore := resolveGameScores(g)

		byTeam := make(map[string][]game.RosterEntry, 2)
		if explicit {
			report.ExplicitGames++
			for _, ref := range refs {
				if ref.Validate() != nil {
					continue
				}
				entry, teamID, ok := matchStarter(ref, g)
				if !ok {
					report.UnmatchedStarters++
					s.logger.WarnContext(ctx, "starter not found on game rosters",
						"game_id", g.ID, "starter", ref.Name, "number", ref.Number)
					continue
				}
				byTeam[teamID] = append(byTeam[teamID], entry)
			}
		} else {
			report.FallbackGames++
			byTeam[g.HomeTeamID] = dressedGoalies(g, g.HomeTeamID)
			byTeam[g.AwayTeamID] = dressedGoalies(g, g.AwayTeamID)
		}

		for _, side := range []struct {
			teamID       string
			goalsAgainst int
			win, loss    bool
		}{
			{teamID: g.HomeTeamID, goalsAgainst: awayScore, win: homeScore > awayScore, loss: homeScore < awayScore},
			{teamID: g.AwayTeamID, goalsAgainst: homeScore, win: awayScore > homeScore, loss: awayScore < homeScore},
		} {
			for _, entry := range dedupeRosterEntries(byTeam[side.teamID]) {
				credits = append(credits, goalie.GameCredit{
					GameID:       g.ID,
					TeamID:       side.teamID,
					Name:         entry.Name,
					Number:       entry.Number,
					Win:          side.win,
					Loss:         side.loss,
					Tie:          !side.win && !side.loss,
					GoalsAgainst: side.goalsAgainst,
				})
			}
		}
	}

	sort.SliceStable(credits, func(i, j int) bool {
		if credits[i].GameID != credits[j].GameID {
			return credits[i].GameID < credits[j].GameID
		}
		if credits[i].TeamID != credits[j].TeamID {
			return credits[i].TeamID < credits[j].TeamID
		}
		return credits[i].Name < credits[j].Name
	})

	s.logger.InfoContext(ctx, "goalie credits resolved",
		"credits", len(credits),
		"explicit_games", report.ExplicitGames,
		"fallback_games", report.FallbackGames,
		"unmatched_starters", report.UnmatchedStarters,
	)
	return credits, report, nil
}

// matchStarter finds the roster goalie a starter ref names, returning the
// roster identity so credits land on the same row the roster produced.
// A number on the ref narrows the match when both sides carry it.
func matchStarter(ref goalie.StarterRef, g game.Record) (game.RosterEntry, string, bool) {
	want := similarity.Normalize(ref.Name)
	for _, teamID := range []string{g.HomeTeamID, g.AwayTeamID} {
		var nameMatch *game.RosterEntry
		for _, entry := range g.RosterFor(teamID) {
			if entry.Position != game.PositionGoalie {
				continue
			}
			if similarity.Normalize(entry.Name) != want {
				continue
			}
			if ref.Number != "" && entry.Number != "" && ref.Number == entry.Number {
				return entry, teamID, true
			}
			if nameMatch == nil {
				e := entry
				nameMatch = &e
			}
		}
		if nameMatch != nil {
			return *nameMatch, teamID, true
		}
	}
	return game.RosterEntry{}, "", false
}

// dressedGoalies is the fallback credit list when the feed says nothing
// about a game: every goalie on the side's roster.
func dressedGoalies(g game.Record, teamID string) []game.RosterEntry {
	var out []game.RosterEntry
	for _, entry := range g.RosterFor(teamID) {
		if entry.Position == game.PositionGoalie {
			out = append(out, entry)
		}
	}
	return out
}

func dedupeRosterEntries(entries []game.RosterEntry) []game.RosterEntry {
	out := make([]game.RosterEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		key := similarity.Normalize(entry.Name) + "\x00" + entry.Number
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	return out
}
