package goalie

import (
	"context"
	"fmt"
	"strings"
)

// StarterRef names one goalie marked as a starter by the extraction
// service. Number and line are carried when the extractor could read them.
type StarterRef struct {
	Name   string `json:"name"`
	Number string `json:"number,omitempty"`
	Line   int    `json:"line,omitempty"`
}

func (r StarterRef) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("starter name is required")
	}
	return nil
}

// GameStarters is the extraction output for one game: the starters read off
// the game sheet, both teams mixed together. Which side each one belongs to
// is resolved later against the game rosters.
type GameStarters struct {
	Goalies []StarterRef `json:"goalies"`
	Count   int          `json:"count"`
}

// StarterMap is the season feed keyed by game id. The engine only consumes
// it; games absent from the map fall back to crediting every dressed
// goalie.
type StarterMap map[string]GameStarters

// StartersFor returns the starters recorded for a game and whether the game
// has an entry at all. An entry with no goalies is an explicit statement
// that nobody gets starter credit.
func (m StarterMap) StartersFor(gameID string) ([]StarterRef, bool) {
	gs, ok := m[gameID]
	if !ok {
		return nil, false
	}
	return gs.Goalies, true
}

type StarterRepository interface {
	GetStarterMap(ctx context.Context) (StarterMap, error)
}

// GameCredit is one goalie's credited appearance: the decision and goals
// against inherited from the team's result in that game.
type GameCredit struct {
	GameID       string `json:"game_id"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Number       string `json:"number,omitempty"`
	Win          bool   `json:"win"`
	Loss         bool   `json:"loss"`
	Tie          bool   `json:"tie"`
	GoalsAgainst int    `json:"goals_against"`
}
