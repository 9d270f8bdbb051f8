package memory

import (
	"github.com/qchockey/lheqstats/internal/domain/division"
	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
)

const (
	TeamIDAlbatros  = "lheq-albatros"
	TeamIDVikings   = "lheq-vikings"
	TeamIDEstacades = "lheq-estacades"
	TeamIDAs        = "lheq-as"

	teamNameAlbatros  = "Albatros de l'Est-du-Québec"
	teamNameVikings   = "Vikings de St-Eustache"
	teamNameEstacades = "Estacades de Trois-Rivières"
	teamNameAs        = "As de Québec"
)

func intPtr(v int) *int {
	return &v
}

func ref(id, name string) game.PlayerRef {
	return game.PlayerRef{ID: id, Name: name}
}

func albatrosRoster() []game.RosterEntry {
	return []game.RosterEntry{
		{PlayerID: "alb-91", Name: "Alexis Bouchard", Number: "91", Position: game.PositionForward},
		{PlayerID: "alb-17", Name: "Émile Tremblay", Number: "17", Position: game.PositionForward},
		{PlayerID: "alb-4", Name: "Nathan Gagnon", Number: "4", Position: game.PositionDefense},
		{PlayerID: "alb-31", Name: "Samuel Pelletier", Number: "31", Position: game.PositionGoalie},
	}
}

func vikingsRoster() []game.RosterEntry {
	return []game.RosterEntry{
		{PlayerID: "vik-9", Name: "Loïc Therrien", Number: "9", Position: game.PositionForward},
		{PlayerID: "vik-22", Name: "William Paquette", Number: "22", Position: game.PositionForward},
		{PlayerID: "vik-6", Name: "Olivier Demers", Number: "6", Position: game.PositionDefense},
		{PlayerID: "vik-30", Name: "Antoine Lavigne", Number: "30", Position: game.PositionGoalie},
	}
}

func estacadesRoster() []game.RosterEntry {
	return []game.RosterEntry{
		{PlayerID: "est-11", Name: "Thomas Bélanger", Number: "11", Position: game.PositionForward},
		{PlayerID: "est-19", Name: "Félix Gauthier", Number: "19", Position: game.PositionForward},
		{PlayerID: "est-5", Name: "Raphaël Ouellet", Number: "5", Position: game.PositionDefense},
		{PlayerID: "est-35", Name: "Jacob Moreau", Number: "35", Position: game.PositionGoalie},
	}
}

func asRoster() []game.RosterEntry {
	return []game.RosterEntry{
		{PlayerID: "as-14", Name: "Xavier Côté", Number: "14", Position: game.PositionForward},
		{PlayerID: "as-28", Name: "Justin Bergeron", Number: "28", Position: game.PositionForward},
		{PlayerID: "as-2", Name: "Charles Fortin", Number: "2", Position: game.PositionDefense},
		{PlayerID: "as-1", Name: "Zachary Dubé", Number: "1", Position: game.PositionGoalie},
	}
}

// SeedGames returns a five-game sample season: four finals covering wins,
// losses, a tie, special-teams goals, and a match penalty, plus one game
// still on the calendar. It lets the pipeline run end to end without a
// scraped games directory.
func SeedGames() []game.Record {
	return []game.Record{
		{
			ID:           "900101",
			Date:         "2025-09-20",
			StartTime:    "19:30",
			Status:       game.StatusFinal,
			HomeTeamID:   TeamIDAlbatros,
			HomeTeamName: teamNameAlbatros,
			AwayTeamID:   TeamIDVikings,
			AwayTeamName: teamNameVikings,
			HomeScore:    intPtr(4),
			AwayScore:    intPtr(2),
			Goals: []game.Goal{
				{Period: "1", Clock: "05:12", TeamID: TeamIDAlbatros, Scorer: ref("alb-91", "Alexis Bouchard"), Assists: []game.PlayerRef{ref("alb-17", "Émile Tremblay")}, Powerplay: true},
				{Period: "1", Clock: "14:03", TeamID: TeamIDVikings, Scorer: ref("vik-9", "Loïc Therrien"), Assists: []game.PlayerRef{ref("vik-22", "William Paquette")}},
				{Period: "2", Clock: "03:40", TeamID: TeamIDAlbatros, Scorer: ref("alb-17", "Émile Tremblay"), Assists: []game.PlayerRef{ref("alb-91", "Alexis Bouchard")}},
				{Period: "2", Clock: "17:55", TeamID: TeamIDVikings, Scorer: ref("vik-22", "William Paquette"), Shorthanded: true},
				{Period: "3", Clock: "06:21", TeamID: TeamIDAlbatros, Scorer: ref("alb-91", "Alexis Bouchard")},
				{Period: "3", Clock: "18:40", TeamID: TeamIDAlbatros, Scorer: ref("alb-4", "Nathan Gagnon"), EmptyNet: true},
			},
			Penalties: []game.Penalty{
				{Period: "1", Clock: "04:50", TeamID: TeamIDVikings, Offender: ref("vik-6", "Olivier Demers"), Infraction: "Bâton élevé", Duration: game.MinutesDuration(2)},
				{Period: "2", Clock: "16:30", TeamID: TeamIDVikings, Offender: ref("vik-9", "Loïc Therrien"), Infraction: "Retenue", Duration: game.MinutesDuration(2)},
				{Period: "3", Clock: "02:00", TeamID: TeamIDAlbatros, Offender: ref("alb-4", "Nathan Gagnon"), Infraction: "Accrochage", Duration: game.MinutesDuration(2)},
			},
			HomeRoster: albatrosRoster(),
			AwayRoster: vikingsRoster(),
		},
		{
			ID:           "900102",
			Date:         "2025-09-21",
			StartTime:    "13:00",
			Status:       game.StatusFinal,
			HomeTeamID:   TeamIDEstacades,
			HomeTeamName: teamNameEstacades,
			AwayTeamID:   TeamIDAs,
			AwayTeamName: teamNameAs,
			HomeScore:    intPtr(3),
			AwayScore:    intPtr(3),
			Goals: []game.Goal{
				{Period: "1", Clock: "08:44", TeamID: TeamIDEstacades, Scorer: ref("est-11", "Thomas Bélanger"), Assists: []game.PlayerRef{ref("est-19", "Félix Gauthier")}},
				{Period: "1", Clock: "12:02", TeamID: TeamIDAs, Scorer: ref("as-14", "Xavier Côté"), Assists: []game.PlayerRef{ref("as-28", "Justin Bergeron")}, Powerplay: true},
				{Period: "2", Clock: "01:19", TeamID: TeamIDEstacades, Scorer: ref("est-19", "Félix Gauthier")},
				{Period: "2", Clock: "10:27", TeamID: TeamIDAs, Scorer: ref("as-28", "Justin Bergeron")},
				{Period: "3", Clock: "07:33", TeamID: TeamIDEstacades, Scorer: ref("est-11", "Thomas Bélanger")},
				{Period: "3", Clock: "15:48", TeamID: TeamIDAs, Scorer: ref("as-14", "Xavier Côté")},
			},
			Penalties: []game.Penalty{
				{Period: "1", Clock: "11:10", TeamID: TeamIDEstacades, Offender: ref("est-5", "Raphaël Ouellet"), Infraction: "Obstruction", Duration: game.MinutesDuration(2)},
				{Period: "3", Clock: "04:20", TeamID: TeamIDAs, Offender: ref("as-2", "Charles Fortin"), Infraction: "Double-échec", Duration: game.MinutesDuration(2)},
			},
			HomeRoster: estacadesRoster(),
			AwayRoster: asRoster(),
		},
		{
			ID:           "900103",
			Date:         "2025-09-27",
			StartTime:    "16:00",
			Status:       game.StatusFinal,
			HomeTeamID:   TeamIDVikings,
			HomeTeamName: teamNameVikings,
			AwayTeamID:   TeamIDEstacades,
			AwayTeamName: teamNameEstacades,
			HomeScore:    intPtr(2),
			AwayScore:    intPtr(5),
			Goals: []game.Goal{
				{Period: "1", Clock: "03:29", TeamID: TeamIDEstacades, Scorer: ref("est-11", "Thomas Bélanger")},
				{Period: "1", Clock: "09:06", TeamID: TeamIDVikings, Scorer: ref("vik-9", "Loïc Therrien")},
				{Period: "2", Clock: "05:51", TeamID: TeamIDEstacades, Scorer: ref("est-19", "Félix Gauthier"), Assists: []game.PlayerRef{ref("est-11", "Thomas Bélanger")}, Powerplay: true},
				{Period: "2", Clock: "13:14", TeamID: TeamIDEstacades, Scorer: ref("est-5", "Raphaël Ouellet")},
				{Period: "3", Clock: "02:38", TeamID: TeamIDVikings, Scorer: ref("vik-6", "Olivier Demers")},
				{Period: "3", Clock: "09:57", TeamID: TeamIDEstacades, Scorer: ref("est-11", "Thomas Bélanger"), Assists: []game.PlayerRef{ref("est-19", "Félix Gauthier")}},
				{Period: "3", Clock: "19:12", TeamID: TeamIDEstacades, Scorer: ref("est-19", "Félix Gauthier"), EmptyNet: true},
			},
			Penalties: []game.Penalty{
				{Period: "2", Clock: "05:02", TeamID: TeamIDVikings, Offender: ref("vik-22", "William Paquette"), Infraction: "Mise en échec par-derrière", Duration: game.MatchDuration()},
				{Period: "3", Clock: "06:45", TeamID: TeamIDEstacades, Offender: ref("est-11", "Thomas Bélanger"), Infraction: "Rudesse", Duration: game.MinutesDuration(2)},
			},
			HomeRoster: vikingsRoster(),
			AwayRoster: estacadesRoster(),
		},
		{
			ID:           "900104",
			Date:         "2025-09-28",
			StartTime:    "12:30",
			Status:       game.StatusFinal,
			HomeTeamID:   TeamIDAs,
			HomeTeamName: teamNameAs,
			AwayTeamID:   TeamIDAlbatros,
			AwayTeamName: teamNameAlbatros,
			HomeScore:    intPtr(1),
			AwayScore:    intPtr(0),
			Goals: []game.Goal{
				{Period: "2", Clock: "11:22", TeamID: TeamIDAs, Scorer: ref("as-28", "Justin Bergeron"), Assists: []game.PlayerRef{ref("as-14", "Xavier Côté"), ref("as-2", "Charles Fortin")}},
			},
			Penalties: []game.Penalty{
				{Period: "3", Clock: "14:00", TeamID: TeamIDAlbatros, Offender: ref("alb-17", "Émile Tremblay"), Infraction: "Inconduite", Duration: game.MinutesDuration(10)},
			},
			HomeRoster: asRoster(),
			AwayRoster: albatrosRoster(),
		},
		{
			ID:           "900105",
			Date:         "2025-10-04",
			StartTime:    "13:00",
			Status:       game.StatusScheduled,
			HomeTeamName: teamNameAlbatros,
			AwayTeamName: teamNameEstacades,
		},
	}
}

// SeedStarters marks the confirmed starting goalies for the first two
// finals; the other games fall back to crediting every dressed goalie.
func SeedStarters() goalie.StarterMap {
	return goalie.StarterMap{
		"900101": {Count: 2, Goalies: []goalie.StarterRef{
			{Name: "Samuel Pelletier", Number: "31", Line: 4},
			{Name: "Antoine Lavigne", Number: "30", Line: 9},
		}},
		"900102": {Count: 2, Goalies: []goalie.StarterRef{
			{Name: "Jacob Moreau", Number: "35", Line: 3},
			{Name: "Zachary Dubé", Number: "1", Line: 7},
		}},
	}
}

// SeedChart groups the seeded teams the way the league publishes its
// divisions.
func SeedChart() division.Chart {
	return division.Chart{
		Groups: []division.Group{
			{Name: "L'Entrepôt du Hockey", Teams: []string{teamNameAs, teamNameAlbatros}},
			{Name: "CCM", Teams: []string{teamNameVikings, teamNameEstacades}},
		},
		Aliases: division.DefaultAliases(),
	}
}
