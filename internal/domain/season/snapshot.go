package season

import (
	"sort"

	"github.com/qchockey/lheqstats/internal/domain/game"
)

// Snapshot is the loaded season frozen at one point: every game record the
// loader accepted, deduplicated and ordered. Downstream stages read from the
// snapshot and never write back, so a pipeline run sees one consistent
// season no matter how stages are ordered or retried.
type Snapshot struct {
	games  []game.Record
	byID   map[string]int
	byTeam map[string][]int
	names  map[string]string
	logos  map[string]string
}

// New builds a snapshot from loaded records. Input order does not matter:
// games are re-sorted by date then id, and per-team name/logo resolution
// picks the value from the latest game so sponsor renames settle on the
// newest spelling.
func New(records []game.Record) *Snapshot {
	games := make([]game.Record, len(records))
	copy(games, records)
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].SortKey() < games[j].SortKey()
	})

	s := &Snapshot{
		games:  games,
		byID:   make(map[string]int, len(games)),
		byTeam: make(map[string][]int, len(games)),
		names:  make(map[string]string, len(games)),
		logos:  make(map[string]string, len(games)),
	}
	for i, g := range games {
		s.byID[g.ID] = i
		// Scheduled games ship without team ids; they stay reachable
		// through Games and GameByID but never mint a team.
		if g.HomeTeamID != "" {
			s.byTeam[g.HomeTeamID] = append(s.byTeam[g.HomeTeamID], i)
			s.names[g.HomeTeamID] = g.HomeTeamName
			if g.HomeLogoURL != "" {
				s.logos[g.HomeTeamID] = g.HomeLogoURL
			}
		}
		if g.AwayTeamID != "" {
			s.byTeam[g.AwayTeamID] = append(s.byTeam[g.AwayTeamID], i)
			s.names[g.AwayTeamID] = g.AwayTeamName
			if g.AwayLogoURL != "" {
				s.logos[g.AwayTeamID] = g.AwayLogoURL
			}
		}
	}
	return s
}

func (s *Snapshot) Len() int {
	return len(s.games)
}

// Games returns the season in date order. The slice is a copy; records are
// shared and must be treated as read-only.
func (s *Snapshot) Games() []game.Record {
	out := make([]game.Record, len(s.games))
	copy(out, s.games)
	return out
}

// FinalGames returns only games whose status marks them as played to the
// end. Everything the aggregation stages count comes from this set.
func (s *Snapshot) FinalGames() []game.Record {
	out := make([]game.Record, 0, len(s.games))
	for _, g := range s.games {
		if g.IsFinal() {
			out = append(out, g)
		}
	}
	return out
}

func (s *Snapshot) GameByID(id string) (game.Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return game.Record{}, false
	}
	return s.games[i], true
}

// GamesInvolving returns the team's games in date order.
func (s *Snapshot) GamesInvolving(teamID string) []game.Record {
	idx := s.byTeam[teamID]
	out := make([]game.Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.games[i])
	}
	return out
}

// TeamIDs returns every team id seen in the season, sorted.
func (s *Snapshot) TeamIDs() []string {
	ids := make([]string, 0, len(s.byTeam))
	for id := range s.byTeam {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NameOf resolves a team id to its most recently observed name.
func (s *Snapshot) NameOf(teamID string) string {
	return s.names[teamID]
}

// LogoOf resolves a team id to its most recently observed logo URL, empty
// when no game carried one.
func (s *Snapshot) LogoOf(teamID string) string {
	return s.logos[teamID]
}
