package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
	"github.com/qchockey/lheqstats/internal/domain/season"
)

// goalieFixtureSnapshot carries two games between the same clubs. The home
// side dresses two goalies in both, so starter refinement has something to
// narrow down.
func goalieFixtureSnapshot() *season.Snapshot {
	g1 := game.Record{
		ID:           "2001",
		Date:         "2025-10-04",
		Status:       game.StatusFinal,
		HomeTeamID:   "t-a",
		HomeTeamName: "Team A",
		AwayTeamID:   "t-b",
		AwayTeamName: "Team B",
		HomeScore:    intp(4),
		AwayScore:    intp(2),
		HomeRoster: []game.RosterEntry{
			{Name: "Xavier Morin", Number: "31", Position: game.PositionGoalie},
			{Name: "Yanick Piché", Number: "1", Position: game.PositionGoalie},
			{Name: "Alex Roy", Number: "91", Position: game.PositionForward},
		},
		AwayRoster: []game.RosterEntry{
			{Name: "Zachary Roy", Number: "30", Position: game.PositionGoalie},
			{Name: "Eric Fortin", Number: "9", Position: game.PositionForward},
		},
	}
	g2 := game.Record{
		ID:           "2002",
		Date:         "2025-10-18",
		Status:       game.StatusFinal,
		HomeTeamID:   "t-b",
		HomeTeamName: "Team B",
		AwayTeamID:   "t-a",
		AwayTeamName: "Team A",
		HomeScore:    intp(3),
		AwayScore:    intp(3),
		HomeRoster: []game.RosterEntry{
			{Name: "Zachary Roy", Number: "30", Position: game.PositionGoalie},
			{Name: "Eric Fortin", Number: "9", Position: game.PositionForward},
		},
		AwayRoster: []game.RosterEntry{
			{Name: "Xavier Morin", Number: "31", Position: game.PositionGoalie},
			{Name: "Yanick Piché", Number: "1", Position: game.PositionGoalie},
			{Name: "Alex Roy", Number: "91", Position: game.PositionForward},
		},
	}
	return season.New([]game.Record{g1, g2})
}

func TestGoalieCreditService_Credits(t *testing.T) {
	t.Parallel()

	// Game 2001 has explicit starters; 2002 falls back to every dressed
	// goalie. The accentless spelling and the unknown name exercise the
	// matching.
	starters := goalie.StarterMap{
		"2001": {
			Goalies: []goalie.StarterRef{
				{Name: "Yanick Piche", Number: "1", Line: 1},
				{Name: "Zachary Roy"},
				{Name: "Nobody Real"},
			},
			Count: 3,
		},
	}

	svc := NewGoalieCreditService(nil, nil)
	credits, report, err := svc.Credits(context.Background(), goalieFixtureSnapshot(), starters)
	if err != nil {
		t.Fatalf("Credits error: %v", err)
	}

	if report.ExplicitGames != 1 || report.FallbackGames != 1 || report.UnmatchedStarters != 1 {
		t.Fatalf("unexpected credit report: %+v", report)
	}
	if len(credits) != 5 {
		t.Fatalf("unexpected credit count: got=%d want=5", len(credits))
	}

	first := credits[0]
	if first.GameID != "2001" || first.TeamID != "t-a" {
		t.Fatalf("unexpected first credit: %+v", first)
	}
	// The credit carries the roster spelling, not the starter feed's.
	if first.Name != "Yanick Piché" || first.Number != "1" {
		t.Fatalf("unexpected starter identity: %+v", first)
	}
	if !first.Win || first.GoalsAgainst != 2 {
		t.Fatalf("unexpected starter decision: %+v", first)
	}

	second := credits[1]
	if second.Name != "Zachary Roy" || !second.Loss || second.GoalsAgainst != 4 {
		t.Fatalf("unexpected away starter credit: %+v", second)
	}

	for _, credit := range credits[2:] {
		if credit.GameID != "2002" {
			t.Fatalf("unexpected credit game: %+v", credit)
		}
		if !credit.Tie || credit.GoalsAgainst != 3 {
			t.Fatalf("fallback credits must inherit the tie: %+v", credit)
		}
	}
	if credits[2].Name != "Xavier Morin" || credits[3].Name != "Yanick Piché" || credits[4].Name != "Zachary Roy" {
		t.Fatalf("unexpected fallback credit order: %+v", credits[2:])
	}

	// The unflagged second goalie keeps no credit for the covered game.
	for _, credit := range credits {
		if credit.GameID == "2001" && credit.Name == "Xavier Morin" {
			t.Fatalf("backup credited despite explicit starters: %+v", credit)
		}
	}
}

func TestGoalieCreditService_Credits_EmptyEntryCreditsNobody(t *testing.T) {
	t.Parallel()

	starters := goalie.StarterMap{
		"2001": {Goalies: nil, Count: 0},
	}

	svc := NewGoalieCreditService(nil, nil)
	credits, report, err := svc.Credits(context.Background(), goalieFixtureSnapshot(), starters)
	if err != nil {
		t.Fatalf("Credits error: %v", err)
	}

	if report.ExplicitGames != 1 || report.FallbackGames != 1 {
		t.Fatalf("unexpected credit report: %+v", report)
	}
	for _, credit := range credits {
		if credit.GameID == "2001" {
			t.Fatalf("empty starter entry must credit nobody, got %+v", credit)
		}
	}
	if len(credits) != 3 {
		t.Fatalf("unexpected credit count: got=%d want=3", len(credits))
	}
}

func TestGoalieCreditService_Credits_EmptySeason(t *testing.T) {
	t.Parallel()

	svc := NewGoalieCreditService(nil, nil)
	_, _, err := svc.Credits(context.Background(), nil, nil)
	if !errors.Is(err, ErrNoGameData) {
		t.Fatalf("expected ErrNoGameData, got %v", err)
	}
}

func TestGoalieCreditService_LoadStarters(t *testing.T) {
	t.Parallel()

	want := goalie.StarterMap{
		"2001": {Goalies: []goalie.StarterRef{{Name: "Yanick Piché", Number: "1"}}, Count: 1},
	}
	svc := NewGoalieCreditService(stubStarterSource{m: want}, nil)

	got, err := svc.LoadStarters(context.Background())
	if err != nil {
		t.Fatalf("LoadStarters error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected starter map size: got=%d want=1", len(got))
	}
	refs, ok := got.StartersFor("2001")
	if !ok || len(refs) != 1 {
		t.Fatalf("unexpected starters for game 2001: %+v", refs)
	}
}

func TestGoalieCreditService_LoadStarters_NotConfigured(t *testing.T) {
	t.Parallel()

	svc := NewGoalieCreditService(nil, nil)
	_, err := svc.LoadStarters(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestGoalieCreditService_LoadStarters_SourceFailure(t *testing.T) {
	t.Parallel()

	svc := NewGoalieCreditService(stubStarterSource{err: errors.New("feed offline")}, nil)
	_, err := svc.LoadStarters(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

type stubStarterSource struct {
	m   goalie.StarterMap
	err error
}

func (s stubStarterSource) GetStarterMap(_ context.Context) (goalie.StarterMap, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.m, nil
}

var _ goalie.StarterRepository = stubStarterSource{}
