package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/xuri/excelize/v2"

	"github.com/qchockey/lheqstats/internal/domain/division"
	"github.com/qchockey/lheqstats/internal/domain/formation"
	"github.com/qchockey/lheqstats/internal/domain/player"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/domain/team"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// SnapshotWriter lands run artifacts under the output directory. Names are
// relative file names like "teams.json"; implementations return the full
// path written.
type SnapshotWriter interface {
	WriteJSON(ctx context.Context, name string, payload any) (string, error)
	WriteBinary(ctx context.Context, name string, data []byte) (string, error)
}

// GameSummary is one row of the season schedule artifact.
type GameSummary struct {
	GameID     string `json:"game_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time,omitempty"`
	Status     string `json:"status"`
	HomeTeamID string `json:"home_team_id"`
	HomeTeam   string `json:"home_team"`
	AwayTeamID string `json:"away_team_id"`
	AwayTeam   string `json:"away_team"`
	HomeScore  *int   `json:"home_score,omitempty"`
	AwayScore  *int   `json:"away_score,omitempty"`
	Final      bool   `json:"final"`
}

// BuildGameSummaries flattens the snapshot into schedule rows in date
// order. Finished games always carry resolved scores; pending games carry
// whatever the sheet published.
func BuildGameSummaries(snap *season.Snapshot) []GameSummary {
	games := snap.Games()
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		row := GameSummary{
			GameID:     g.ID,
			Date:       g.Date,
			StartTime:  g.StartTime,
			Status:     g.Status,
			HomeTeamID: g.HomeTeamID,
			HomeTeam:   g.HomeTeamName,
			AwayTeamID: g.AwayTeamID,
			AwayTeam:   g.AwayTeamName,
			Final:      g.IsFinal(),
		}
		if row.Final {
			hs, as := resolveGameScores(g)
			row.HomeScore, row.AwayScore = &hs, &as
		} else {
			if g.HomeScore != nil {
				hs := *g.HomeScore
				row.HomeScore = &hs
			}
			if g.AwayScore != nil {
				as := *g.AwayScore
				row.AwayScore = &as
			}
		}
		out = append(out, row)
	}
	return out
}

// ReportInput is everything a run produced. Sections left nil (because the
// step that builds them failed or was skipped) are simply not written.
type ReportInput struct {
	Snapshot        *season.Snapshot
	Teams           []team.SeasonStats
	Players         []player.SeasonStats
	Assignments     []division.Assignment
	DivisionSummary division.Summary
	Formations      []formation.TeamFormations
}

type ReportOutput struct {
	Files []string `json:"files"`
}

// ReportService writes the run artifacts: one JSON file per section plus an
// XLSX standings workbook. Sections are independent, so writes run
// concurrently and a failing section does not block the others from
// landing.
type ReportService struct {
	writer SnapshotWriter
	logger *logging.Logger
}

func NewReportService(writer SnapshotWriter, logger *logging.Logger) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{writer: writer, logger: logger}
}

// WriteAll writes every section present in the input and returns the file
// paths that landed, sorted. Write failures are joined and returned after
// every section has been attempted.
func (s *ReportService) WriteAll(ctx context.Context, in ReportInput) (ReportOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.WriteAll")
	defer span.End()

	if s.writer == nil {
		return ReportOutput{}, fmt.Errorf("%w: snapshot writer not configured", ErrDependencyUnavailable)
	}
	if in.Snapshot == nil {
		return ReportOutput{}, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}

	teams := applyDivisions(in.Teams, in.Assignments)
	divisionNames := divisionByTeam(in.Assignments)

	var mu sync.Mutex
	var files []string
	record := func(path string) {
		mu.Lock()
		files = append(files, path)
		mu.Unlock()
	}

	writers := pool.New().WithErrors()
	writers.Go(func() error {
		path, err := s.writer.WriteJSON(ctx, "games.json", BuildGameSummaries(in.Snapshot))
		if err != nil {
			return fmt.Errorf("write games.json: %w", err)
		}
		record(path)
		return nil
	})
	if teams != nil {
		writers.Go(func() error {
			path, err := s.writer.WriteJSON(ctx, "teams.json", teams)
			if err != nil {
				return fmt.Errorf("write teams.json: %w", err)
			}
			record(path)
			return nil
		})
		writers.Go(func() error {
			book, err := buildStandingsWorkbook(teams, divisionNames)
			if err != nil {
				return fmt.Errorf("build standings workbook: %w", err)
			}
			path, err := s.writer.WriteBinary(ctx, "standings.xlsx", book)
			if err != nil {
				return fmt.Errorf("write standings.xlsx: %w", err)
			}
			record(path)
			return nil
		})
	}
	if in.Players != nil {
		writers.Go(func() error {
			path, err := s.writer.WriteJSON(ctx, "players.json", in.Players)
			if err != nil {
				return fmt.Errorf("write players.json: %w", err)
			}
			record(path)
			return nil
		})
	}
	if in.Assignments != nil {
		writers.Go(func() error {
			path, err := s.writer.WriteJSON(ctx, "divisions.json", buildDivisionsArtifact(in.Assignments, in.DivisionSummary))
			if err != nil {
				return fmt.Errorf("write divisions.json: %w", err)
			}
			record(path)
			return nil
		})
	}
	if in.Formations != nil {
		writers.Go(func() error {
			path, err := s.writer.WriteJSON(ctx, "formations.json", in.Formations)
			if err != nil {
				return fmt.Errorf("write formations.json: %w", err)
			}
			record(path)
			return nil
		})
	}
	err := writers.Wait()

	sort.Strings(files)
	if err != nil {
		return ReportOutput{Files: files}, err
	}
	s.logger.InfoContext(ctx, "run artifacts written", "files", len(files))
	return ReportOutput{Files: files}, nil
}

// applyDivisions stamps the assigned division onto a copy of the standings
// rows; the input slice stays untouched.
func applyDivisions(teams []team.SeasonStats, assignments []division.Assignment) []team.SeasonStats {
	if teams == nil {
		return nil
	}
	out := append([]team.SeasonStats(nil), teams...)
	byTeam := divisionByTeam(assignments)
	for i := range out {
		if name, ok := byTeam[out[i].TeamID]; ok {
			out[i].Division = name
		}
	}
	return out
}

func divisionByTeam(assignments []division.Assignment) map[string]string {
	out := make(map[string]string, len(assignments))
	for _, a := range assignments {
		out[a.TeamID] = a.Division
	}
	return out
}

// divisionsArtifact is the divisions.json shape the presentation layer
// reads: the grouping in both directions plus the per-team match metadata.
type divisionsArtifact struct {
	Divisions      map[string][]string   `json:"divisions"`
	TeamToDivision map[string]string     `json:"team_to_division"`
	Assignments    []division.Assignment `json:"assignments"`
	Summary        division.Summary      `json:"summary"`
}

func buildDivisionsArtifact(assignments []division.Assignment, summary division.Summary) divisionsArtifact {
	out := divisionsArtifact{
		Divisions:      make(map[string][]string, 8),
		TeamToDivision: make(map[string]string, len(assignments)),
		Assignments:    assignments,
		Summary:        summary,
	}
	for _, a := range assignments {
		out.Divisions[a.Division] = append(out.Divisions[a.Division], a.TeamName)
		out.TeamToDivision[a.TeamName] = a.Division
	}
	for _, teams := range out.Divisions {
		sort.Strings(teams)
	}
	return out
}

const leagueSheet = "League"

var standingsHeader = []any{"Rank", "Team", "Division", "GP", "W", "L", "T", "PTS", "GF", "GA", "DIFF", "PIM"}

// buildStandingsWorkbook renders the standings as an XLSX workbook: a
// league-wide sheet first, then one sheet per division in the order
// divisions appear in the standings.
func buildStandingsWorkbook(teams []team.SeasonStats, divisions map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", leagueSheet)
	if err := writeStandingsSheet(f, leagueSheet, teams); err != nil {
		return nil, err
	}

	var order []string
	grouped := make(map[string][]team.SeasonStats, 8)
	for _, row := range teams {
		div := row.Division
		if div == "" {
			div = divisions[row.TeamID]
		}
		if div == "" {
			continue
		}
		if _, ok := grouped[div]; !ok {
			order = append(order, div)
		}
		grouped[div] = append(grouped[div], row)
	}
	used := map[string]struct{}{leagueSheet: {}}
	for _, div := range order {
		name := sheetName(div, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeStandingsSheet(f, name, grouped[div]); err != nil {
			return nil, err
		}
	}

	index, err := f.GetSheetIndex(leagueSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeStandingsSheet(f *excelize.File, sheet string, teams []team.SeasonStats) error {
	if err := f.SetSheetRow(sheet, "A1", &standingsHeader); err != nil {
		return err
	}
	for i, row := range teams {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			i + 1,
			row.Name,
			row.Division,
			row.GamesPlayed,
			row.Wins,
			row.Losses,
			row.Ties,
			row.Points,
			row.GoalsFor,
			row.GoalsAgainst,
			row.GoalDifferential,
			row.PenaltyMinutes,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "B", "C", 28)
}

// sheetName makes a division name safe for XLSX sheet naming: the banned
// characters go, the 31-rune cap applies, and collisions get a numeric
// suffix.
func sheetName(div string, used map[string]struct{}) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		default:
			return r
		}
	}, div)
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Division"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	base := name
	for n := 2; ; n++ {
		if _, taken := used[name]; !taken {
			break
		}
		suffix := fmt.Sprintf(" %d", n)
		runes := []rune(base)
		if len(runes)+len(suffix) > 31 {
			runes = runes[:31-len(suffix)]
		}
		name = string(runes) + suffix
	}
	used[name] = struct{}{}
	return name
}
