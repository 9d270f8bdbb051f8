package team

import "fmt"

// SplitRecord is a W-L-T line scoped to home or away games.
type SplitRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

func (s SplitRecord) Games() int {
	return s.Wins + s.Losses + s.Ties
}

// SeasonStats is one team's season aggregate row.
type SeasonStats struct {
	TeamID                 string      `json:"team_id"`
	Name                   string      `json:"name"`
	Division               string      `json:"division,omitempty"`
	LogoURL                string      `json:"logo_url,omitempty"`
	GamesPlayed            int         `json:"games_played"`
	Wins                   int         `json:"wins"`
	Losses                 int         `json:"losses"`
	Ties                   int         `json:"ties"`
	Points                 int         `json:"points"`
	GoalsFor               int         `json:"goals_for"`
	GoalsAgainst           int         `json:"goals_against"`
	GoalDifferential       int         `json:"goal_differential"`
	PenaltyMinutes         int         `json:"penalty_minutes"`
	PowerplayGoals         int         `json:"powerplay_goals"`
	PowerplayOpportunities int         `json:"powerplay_opportunities"`
	ShorthandedGoals       int         `json:"shorthanded_goals"`
	PenaltyKillChances     int         `json:"penalty_kill_chances"`
	PowerplayGoalsAgainst  int         `json:"powerplay_goals_against"`
	Home                   SplitRecord `json:"home"`
	Away                   SplitRecord `json:"away"`
}

func (s SeasonStats) Validate() error {
	if s.TeamID == "" {
		return fmt.Errorf("team id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if s.Points != 2*s.Wins+s.Ties {
		return fmt.Errorf("team %s points=%d want 2*wins+ties=%d", s.TeamID, s.Points, 2*s.Wins+s.Ties)
	}
	if s.GamesPlayed != s.Wins+s.Losses+s.Ties {
		return fmt.Errorf("team %s games_played=%d want wins+losses+ties=%d", s.TeamID, s.GamesPlayed, s.Wins+s.Losses+s.Ties)
	}
	if s.GoalDifferential != s.GoalsFor-s.GoalsAgainst {
		return fmt.Errorf("team %s goal_differential=%d want goals_for-goals_against=%d", s.TeamID, s.GoalDifferential, s.GoalsFor-s.GoalsAgainst)
	}
	return nil
}
