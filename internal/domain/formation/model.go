package formation

import (
	"fmt"
	"math"
)

// UnknownMember fills a line slot no teammate had enough shared goals to
// claim.
const UnknownMember = "unknown"

type LineType string

const (
	LineTypeForward   LineType = "forward_line"
	LineTypeDefense   LineType = "defense_pair"
	LineTypePowerplay LineType = "powerplay_unit"
)

// Line is one inferred unit: its members in roster order (UnknownMember
// padding last), the goals the unit produced together, and a confidence
// score relative to the team's strongest unit of the same type.
type Line struct {
	Type       LineType `json:"type"`
	Rank       int      `json:"rank"`
	Members    []string `json:"members"`
	Goals      int      `json:"goals"`
	Confidence float64  `json:"confidence"`
}

// TeamFormations is the per-team inference output.
type TeamFormations struct {
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	GamesConsidered int    `json:"games_considered"`
	ForwardLines    []Line `json:"forward_lines"`
	DefensePairs    []Line `json:"defense_pairs"`
	PowerplayUnits  []Line `json:"powerplay_units"`
}

// Config bounds the inference. Zero values are replaced by defaults via
// Normalize.
type Config struct {
	MaxForwardLines   int
	MaxDefensePairs   int
	MaxPowerplayUnits int
	// MinPairWeight is the shared-goal count a defense duo needs before it
	// is reported as a pair.
	MinPairWeight int
}

func (c Config) Normalize() Config {
	if c.MaxForwardLines <= 0 {
		c.MaxForwardLines = 4
	}
	if c.MaxDefensePairs <= 0 {
		c.MaxDefensePairs = 3
	}
	if c.MaxPowerplayUnits <= 0 {
		c.MaxPowerplayUnits = 3
	}
	if c.MinPairWeight <= 0 {
		c.MinPairWeight = 2
	}
	return c
}

func (c Config) Validate() error {
	if c.MaxForwardLines < 0 || c.MaxDefensePairs < 0 || c.MaxPowerplayUnits < 0 {
		return fmt.Errorf("formation limits must not be negative")
	}
	return nil
}

// Confidence scales a unit's goal count against the strongest unit of its
// type, as a percentage rounded to one decimal.
func Confidence(goals, best int) float64 {
	if best <= 0 || goals <= 0 {
		return 0
	}
	return math.Round(float64(goals)/float64(best)*1000) / 10
}
