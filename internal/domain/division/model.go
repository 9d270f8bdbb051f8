package division

import (
	"fmt"
	"strings"
)

// Unassigned is the bucket for teams whose name never clears the match
// threshold against any charted entry.
const Unassigned = "Unassigned"

// Match methods recorded on assignments.
const (
	MethodExact      = "exact"
	MethodFuzzy      = "fuzzy"
	MethodUnassigned = "unassigned"
)

// Group is one division as charted by the league: a display name plus the
// official spellings of its member teams. Declaration order is the
// tie-break order for equal-score matches.
type Group struct {
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
}

// Chart is the season's division layout plus the alias table mapping
// alternate spellings (sponsor renames, accent variants) onto charted team
// names.
type Chart struct {
	Groups  []Group           `json:"groups"`
	Aliases map[string]string `json:"aliases,omitempty"`
}

func (c Chart) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("division chart has no groups")
	}
	seen := make(map[string]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return fmt.Errorf("division chart group %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("division chart group %q appears twice", name)
		}
		seen[name] = struct{}{}
		if len(g.Teams) == 0 {
			return fmt.Errorf("division chart group %q has no teams", name)
		}
	}
	for raw, canonical := range c.Aliases {
		if strings.TrimSpace(raw) == "" || strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("division chart alias %q -> %q is incomplete", raw, canonical)
		}
	}
	return nil
}

// Entry is one matchable chart row: a charted team name pointing back at
// its division.
type Entry struct {
	Division string
	Name     string
}

// Entries flattens the chart into matchable rows preserving chart order so
// that equal-score matches resolve deterministically.
func (c Chart) Entries() []Entry {
	var out []Entry
	for _, g := range c.Groups {
		for _, t := range g.Teams {
			out = append(out, Entry{Division: g.Name, Name: t})
		}
	}
	return out
}

// DefaultAliases is the built-in replacement table for feed spellings that
// drop the particles of the charted names. A chart file may extend or
// override it.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Grenadiers Lac St-Louis":  "Grenadiers du Lac St-Louis",
		"Lions Lac St-Louis":       "Lions du Lac St-Louis",
		"Citadelles Rouyn-Noranda": "Citadelles de Rouyn-Noranda",
		"Seigneurs Mille-Îles":     "Seigneurs des Mille-Îles",
	}
}

// Assignment records where one observed team landed and how the match was
// made.
type Assignment struct {
	TeamID      string  `json:"team_id"`
	TeamName    string  `json:"team_name"`
	Division    string  `json:"division"`
	Method      string  `json:"method"`
	MatchedName string  `json:"matched_name,omitempty"`
	Score       float64 `json:"score"`
}

func (a Assignment) IsUnassigned() bool {
	return a.Division == Unassigned
}

// Summary counts assignments per division, the Unassigned bucket included.
type Summary struct {
	Divisions map[string]int `json:"divisions"`
	Total     int            `json:"total"`
}

func Summarize(assignments []Assignment) Summary {
	s := Summary{Divisions: make(map[string]int, 8)}
	for _, a := range assignments {
		s.Divisions[a.Division]++
		s.Total++
	}
	return s
}
