package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
)

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "FINISHED", "OFFICIAL":
		return true
	default:
		return false
	}
}

// Position is the skater/goalie slot a roster entry occupies in aggregation.
type Position string

const (
	PositionForward Position = "F"
	PositionDefense Position = "D"
	PositionGoalie  Position = "G"
)

// NormalizePosition maps a raw roster position label onto the aggregation
// buckets. Centres and wingers fold into forwards; bench staff return false
// and are excluded from skater stats entirely.
func NormalizePosition(raw string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "G", "GK", "GOALIE", "GOALER", "GARDIEN":
		return PositionGoalie, true
	case "D", "DEF", "DEFENSE", "DEFENCE", "LD", "RD", "DÉFENSEUR", "DEFENSEUR":
		return PositionDefense, true
	case "COACH", "HEAD COACH", "ASSISTANT COACH", "GOALTENDING COACH",
		"TRAINER", "SAFETY PERSON", "STAFF", "MANAGER",
		"ENTRAINEUR", "ENTRAÎNEUR", "ENTRAÎNEUR-CHEF":
		return "", false
	case "":
		return PositionForward, true
	default:
		// C, LW, RW, W, F and anything unrecognized count as forwards.
		return PositionForward, true
	}
}

// PlayerRef points at a participant inside one game document.
type PlayerRef struct {
	ID   string
	Name string
}

// RosterEntry is one dressed player on a side of a game.
type RosterEntry struct {
	PlayerID string
	Name     string
	Number   string
	Position Position
}

// Goal is a single scoring event. Assists keep document order (0-2 entries).
type Goal struct {
	Period      string
	Clock       string
	TeamID      string
	Scorer      PlayerRef
	Assists     []PlayerRef
	Powerplay   bool
	Shorthanded bool
	EmptyNet    bool
	PenaltyShot bool
}

// Participants returns the scorer followed by the assisters.
func (g Goal) Participants() []PlayerRef {
	out := make([]PlayerRef, 0, 1+len(g.Assists))
	out = append(out, g.Scorer)
	out = append(out, g.Assists...)
	return out
}

type PenaltyKind string

const (
	PenaltyKindMinutes PenaltyKind = "minutes"
	PenaltyKindMatch   PenaltyKind = "match"
)

// PenaltyDuration is the load-time resolution of the polymorphic duration
// field: either a canonical minute count or the distinguished non-numeric
// match variant.
type PenaltyDuration struct {
	Kind    PenaltyKind
	Minutes int
}

func MinutesDuration(minutes int) PenaltyDuration {
	if minutes < 0 {
		minutes = 0
	}
	return PenaltyDuration{Kind: PenaltyKindMinutes, Minutes: minutes}
}

func MatchDuration() PenaltyDuration {
	return PenaltyDuration{Kind: PenaltyKindMatch}
}

// DurationFromLabel resolves a categorical penalty label to its canonical
// duration. Labels arrive decorated ("Mineure (2 min)", "Game Misconduct"),
// in English or French, so matching is by fragment. Labels that match
// nothing count as minors.
func DurationFromLabel(label string) PenaltyDuration {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "match") || strings.Contains(l, "extrême") || strings.Contains(l, "extreme"):
		return MatchDuration()
	case strings.Contains(l, "misconduct") || strings.Contains(l, "inconduite"):
		return MinutesDuration(10)
	case strings.Contains(l, "major") || strings.Contains(l, "majeur"):
		return MinutesDuration(5)
	default:
		return MinutesDuration(2)
	}
}

// PenaltyMinutes is the PIM contribution of the duration. Match penalties
// carry no minute value.
func (d PenaltyDuration) PenaltyMinutes() int {
	if d.Kind == PenaltyKindMatch {
		return 0
	}
	return d.Minutes
}

// Penalty is a single infraction event.
type Penalty struct {
	Period     string
	Clock      string
	TeamID     string
	Offender   PlayerRef
	Infraction string
	Duration   PenaltyDuration
}

// Record is the immutable snapshot of one contest. It is created once by
// the loader and never mutated afterwards; derived corrections (starter
// flags, divisions) live in side tables owned by later pipeline steps.
type Record struct {
	ID           string
	Date         string
	StartTime    string
	Status       string
	HomeTeamID   string
	HomeTeamName string
	AwayTeamID   string
	AwayTeamName string
	HomeLogoURL  string
	AwayLogoURL  string
	HomeScore    *int
	AwayScore    *int
	Goals        []Goal
	Penalties    []Penalty
	HomeRoster   []RosterEntry
	AwayRoster   []RosterEntry
}

func (r Record) IsFinal() bool {
	return IsFinalStatus(r.Status)
}

// HasTeam reports whether the id is one of the record's two sides.
func (r Record) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == r.HomeTeamID || teamID == r.AwayTeamID)
}

// RosterFor returns the roster of the side owning teamID, nil otherwise.
func (r Record) RosterFor(teamID string) []RosterEntry {
	switch teamID {
	case r.HomeTeamID:
		return r.HomeRoster
	case r.AwayTeamID:
		return r.AwayRoster
	default:
		return nil
	}
}

// OpponentID returns the other side of the game.
func (r Record) OpponentID(teamID string) string {
	switch teamID {
	case r.HomeTeamID:
		return r.AwayTeamID
	case r.AwayTeamID:
		return r.HomeTeamID
	default:
		return ""
	}
}

// SortKey orders records deterministically for folding: date first, then id.
func (r Record) SortKey() string {
	return r.Date + "\x00" + r.ID
}

// ParseDate parses the record date for summary ordering. Dates arrive as
// YYYY-MM-DD from the feed; unparseable values sort first.
func (r Record) ParseDate() time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("game date is required")
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date)); err != nil {
		return fmt.Errorf("game date %q is not YYYY-MM-DD", r.Date)
	}
	if strings.TrimSpace(r.Status) == "" {
		return fmt.Errorf("game status is required")
	}
	if strings.TrimSpace(r.HomeTeamName) == "" || strings.TrimSpace(r.AwayTeamName) == "" {
		return fmt.Errorf("both team names are required")
	}
	// Team ids come from the boxscore, which scheduled games do not have
	// yet. Aggregation only reads final games, so only those need ids.
	if r.IsFinal() && (strings.TrimSpace(r.HomeTeamID) == "" || strings.TrimSpace(r.AwayTeamID) == "") {
		return fmt.Errorf("final game needs both team ids")
	}
	if r.HomeTeamID != "" && r.HomeTeamID == r.AwayTeamID {
		return fmt.Errorf("home and away team ids must differ")
	}
	for idx, goal := range r.Goals {
		if !r.HasTeam(goal.TeamID) {
			return fmt.Errorf("goal %d references team %s not playing this game", idx, goal.TeamID)
		}
	}
	for idx, penalty := range r.Penalties {
		if !r.HasTeam(penalty.TeamID) {
			return fmt.Errorf("penalty %d references team %s not playing this game", idx, penalty.TeamID)
		}
	}
	return nil
}
