package player

import (
	"fmt"
	"math"
	"strings"

	"github.com/qchockey/lheqstats/internal/domain/game"
)

// Key identifies one player within a season. The jersey number keeps
// same-named players on one roster apart; a player skating for two teams
// is tracked as two entities, never merged.
type Key struct {
	TeamID string
	Name   string
	Number string
}

func NewKey(teamID, name, number string) Key {
	return Key{
		TeamID: strings.TrimSpace(teamID),
		Name:   strings.TrimSpace(name),
		Number: strings.TrimSpace(number),
	}
}

func (k Key) Validate() error {
	if k.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if k.Name == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// SeasonStats is one player's season aggregate row. Goalie fields stay zero
// for skaters and vice versa; Points is goals+assists for skaters and zero
// for goalies.
type SeasonStats struct {
	TeamID   string        `json:"team_id"`
	TeamName string        `json:"team_name"`
	Name     string        `json:"name"`
	Number   string        `json:"number,omitempty"`
	Position game.Position `json:"position"`

	GamesPlayed    int `json:"games_played"`
	Goals          int `json:"goals"`
	Assists        int `json:"assists"`
	Points         int `json:"points"`
	PenaltyMinutes int `json:"penalty_minutes"`
	MatchPenalties int `json:"match_penalties,omitempty"`

	PowerplayGoals     int `json:"powerplay_goals,omitempty"`
	PowerplayAssists   int `json:"powerplay_assists,omitempty"`
	ShorthandedGoals   int `json:"shorthanded_goals,omitempty"`
	ShorthandedAssists int `json:"shorthanded_assists,omitempty"`

	Wins                int     `json:"wins,omitempty"`
	Losses              int     `json:"losses,omitempty"`
	Ties                int     `json:"ties,omitempty"`
	GoalsAgainst        int     `json:"goals_against,omitempty"`
	GoalsAgainstAverage float64 `json:"goals_against_average"`
}

func (s SeasonStats) Key() Key {
	return NewKey(s.TeamID, s.Name, s.Number)
}

func (s SeasonStats) IsGoalie() bool {
	return s.Position == game.PositionGoalie
}

// ComputeGAA is the games-played ratio the aggregation pipeline uses:
// goals against per game played, rounded to two decimals, zero for an
// empty season.
func ComputeGAA(goalsAgainst, gamesPlayed int) float64 {
	if gamesPlayed <= 0 {
		return 0
	}
	return math.Round(float64(goalsAgainst)/float64(gamesPlayed)*100) / 100
}
