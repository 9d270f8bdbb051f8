package filesystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/qchockey/lheqstats/internal/domain/game"
)

// gameDocument mirrors the scraper's per-game JSON payload. Scheduled games
// carry only the header fields; the boxscore and rosters appear once the
// game is final.
type gameDocument struct {
	ID         flexibleString         `json:"id" validate:"required"`
	Status     string                 `json:"status" validate:"required"`
	HomeTeam   string                 `json:"home_team" validate:"required"`
	AwayTeam   string                 `json:"away_team" validate:"required"`
	Date       string                 `json:"date" validate:"required"`
	StartTime  string                 `json:"start_time"`
	HomeScore  *int                   `json:"home_score"`
	AwayScore  *int                   `json:"away_score"`
	HomeLogo   string                 `json:"home_team_logo"`
	AwayLogo   string                 `json:"away_team_logo"`
	Boxscore   *boxscoreDocument      `json:"boxscore"`
	HomeRoster []rosterMemberDocument `json:"home_team_roster"`
	AwayRoster []rosterMemberDocument `json:"away_team_roster"`
}

type boxscoreDocument struct {
	Teams     []boxscoreTeamDocument `json:"teams" validate:"omitempty,len=2"`
	Goals     []goalDocument         `json:"goals"`
	Penalties []penaltyDocument      `json:"penalties"`
}

// boxscoreTeamDocument rows come home side first, away second.
type boxscoreTeamDocument struct {
	ID      flexibleString `json:"id"`
	Name    string         `json:"name"`
	LogoURL string         `json:"logoUrl"`
}

type participantDocument struct {
	ParticipantID flexibleString `json:"participantId"`
	FullName      string         `json:"fullName"`
}

func (p participantDocument) toRef() game.PlayerRef {
	return game.PlayerRef{
		ID:   p.ParticipantID.String(),
		Name: strings.TrimSpace(p.FullName),
	}
}

type goalDocument struct {
	Participant   participantDocument   `json:"participant"`
	TeamID        flexibleString        `json:"teamId"`
	Assists       []participantDocument `json:"assists"`
	IsPowerplay   bool                  `json:"isPowerplay"`
	IsShorthanded bool                  `json:"isShorthanded"`
	IsEmptyNet    bool                  `json:"isEmptyNet"`
	IsPenaltyShot bool                  `json:"isPenaltyShot"`
	Period        flexibleString        `json:"period"`
	Time          string                `json:"time"`
}

type penaltyDocument struct {
	Participant *participantDocument `json:"participant"`
	TeamID      flexibleString       `json:"teamId"`
	Description string               `json:"description"`
	Duration    penaltyDurationValue `json:"duration"`
	Period      flexibleString       `json:"period"`
	Time        string               `json:"time"`
}

type rosterMemberDocument struct {
	ParticipantID flexibleString       `json:"participantId"`
	Participant   *participantDocument `json:"participant"`
	Positions     []string             `json:"positions"`
	Number        flexibleString       `json:"number"`
}

func (d gameDocument) toDomain() game.Record {
	rec := game.Record{
		ID:           d.ID.String(),
		Date:         strings.TrimSpace(d.Date),
		StartTime:    strings.TrimSpace(d.StartTime),
		Status:       game.NormalizeStatus(d.Status),
		HomeTeamName: strings.TrimSpace(d.HomeTeam),
		AwayTeamName: strings.TrimSpace(d.AwayTeam),
		HomeLogoURL:  strings.TrimSpace(d.HomeLogo),
		AwayLogoURL:  strings.TrimSpace(d.AwayLogo),
		HomeScore:    d.HomeScore,
		AwayScore:    d.AwayScore,
	}

	if d.Boxscore != nil && len(d.Boxscore.Teams) == 2 {
		home, away := d.Boxscore.Teams[0], d.Boxscore.Teams[1]
		rec.HomeTeamID = home.ID.String()
		rec.AwayTeamID = away.ID.String()
		if rec.HomeTeamName == "" {
			rec.HomeTeamName = strings.TrimSpace(home.Name)
		}
		if rec.AwayTeamName == "" {
			rec.AwayTeamName = strings.TrimSpace(away.Name)
		}
		if rec.HomeLogoURL == "" {
			rec.HomeLogoURL = strings.TrimSpace(home.LogoURL)
		}
		if rec.AwayLogoURL == "" {
			rec.AwayLogoURL = strings.TrimSpace(away.LogoURL)
		}
		rec.Goals = goalsToDomain(d.Boxscore.Goals)
		rec.Penalties = penaltiesToDomain(d.Boxscore.Penalties)
	}

	rec.HomeRoster = rosterToDomain(d.HomeRoster)
	rec.AwayRoster = rosterToDomain(d.AwayRoster)
	return rec
}

func goalsToDomain(docs []goalDocument) []game.Goal {
	if len(docs) == 0 {
		return nil
	}
	out := make([]game.Goal, 0, len(docs))
	for _, doc := range docs {
		goal := game.Goal{
			Period:      doc.Period.String(),
			Clock:       strings.TrimSpace(doc.Time),
			TeamID:      doc.TeamID.String(),
			Scorer:      doc.Participant.toRef(),
			Powerplay:   doc.IsPowerplay,
			Shorthanded: doc.IsShorthanded,
			EmptyNet:    doc.IsEmptyNet,
			PenaltyShot: doc.IsPenaltyShot,
		}
		for _, assist := range doc.Assists {
			goal.Assists = append(goal.Assists, assist.toRef())
		}
		out = append(out, goal)
	}
	return out
}

func penaltiesToDomain(docs []penaltyDocument) []game.Penalty {
	if len(docs) == 0 {
		return nil
	}
	out := make([]game.Penalty, 0, len(docs))
	for _, doc := range docs {
		pen := game.Penalty{
			Period:     doc.Period.String(),
			Clock:      strings.TrimSpace(doc.Time),
			TeamID:     doc.TeamID.String(),
			Infraction: strings.TrimSpace(doc.Description),
			Duration:   doc.Duration.resolve(),
		}
		if doc.Participant != nil {
			pen.Offender = doc.Participant.toRef()
		}
		out = append(out, pen)
	}
	return out
}

func rosterToDomain(members []rosterMemberDocument) []game.RosterEntry {
	if len(members) == 0 {
		return nil
	}
	out := make([]game.RosterEntry, 0, len(members))
	for _, m := range members {
		position, ok := game.NormalizePosition(primaryPosition(m.Positions))
		if !ok {
			// Bench staff dress on the roster feed but never play.
			continue
		}
		id := m.ParticipantID.String()
		name := ""
		if m.Participant != nil {
			name = strings.TrimSpace(m.Participant.FullName)
		}
		if id == "" && name == "" {
			continue
		}
		out = append(out, game.RosterEntry{
			PlayerID: id,
			Name:     name,
			Number:   m.Number.String(),
			Position: position,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func primaryPosition(positions []string) string {
	for _, p := range positions {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

// flexibleString accepts a JSON number or string; ids, jersey numbers, and
// periods show up both ways across feed versions.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexibleString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := sonic.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexibleString(n.String())
	return nil
}

func (f flexibleString) String() string {
	return string(f)
}

// penaltyDurationValue resolves the feed's polymorphic duration field at
// decode time: a bare minute count, a label, {minutes}, or {name}.
type penaltyDurationValue struct {
	duration game.PenaltyDuration
	set      bool
}

func (v *penaltyDurationValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var minutes float64
	if err := sonic.Unmarshal(trimmed, &minutes); err == nil {
		v.duration = game.MinutesDuration(int(minutes))
		v.set = true
		return nil
	}

	var label string
	if err := sonic.Unmarshal(trimmed, &label); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(label)); err == nil {
			v.duration = game.MinutesDuration(n)
		} else {
			v.duration = game.DurationFromLabel(label)
		}
		v.set = true
		return nil
	}

	var wrapped struct {
		Minutes *float64 `json:"minutes"`
		Name    string   `json:"name"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err != nil {
		return fmt.Errorf("unsupported penalty duration shape %s", string(trimmed))
	}
	switch {
	case wrapped.Minutes != nil:
		v.duration = game.MinutesDuration(int(*wrapped.Minutes))
		v.set = true
	case strings.TrimSpace(wrapped.Name) != "":
		v.duration = game.DurationFromLabel(wrapped.Name)
		v.set = true
	}
	return nil
}

// Absent or unreadable durations count as minors.
func (v penaltyDurationValue) resolve() game.PenaltyDuration {
	if !v.set {
		return game.MinutesDuration(2)
	}
	return v.duration
}
