package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/qchockey/lheqstats/internal/domain/division"
	"github.com/qchockey/lheqstats/internal/domain/formation"
	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
)

func pipelineFixtureRepo() *stubLoaderGameRepo {
	games := statsFixtureGames()
	repo := &stubLoaderGameRepo{records: make(map[string]game.Record, len(games))}
	for _, g := range games {
		name := fmt.Sprintf("game_%s_%s.json", g.ID, g.Date)
		repo.sources = append(repo.sources, name)
		repo.records[name] = g
	}
	return repo
}

func pipelineFixtureStarters() stubStarterSource {
	return stubStarterSource{m: goalie.StarterMap{
		"1001": {
			Goalies: []goalie.StarterRef{
				{Name: "Carl Dion", Number: "31", Line: 1},
				{Name: "Noah Girard", Number: "30", Line: 1},
			},
			Count: 2,
		},
	}}
}

func pipelineFixtureService(t *testing.T, repo game.Repository, starterSrc goalie.StarterRepository, writer SnapshotWriter) *PipelineService {
	t.Helper()

	chart := division.Chart{
		Groups: []division.Group{
			{Name: "North", Teams: []string{"Team A", "Team B"}},
			{Name: "South", Teams: []string{"Team C"}},
		},
	}
	formations, err := NewFormationService(formation.Config{}, nil)
	if err != nil {
		t.Fatalf("NewFormationService error: %v", err)
	}
	return NewPipelineService(
		NewRecordLoaderService(repo, 2, nil),
		NewGoalieCreditService(starterSrc, nil),
		NewStatsService(nil),
		NewDivisionService(stubChartSource{chart: chart}, 0.7, nil),
		formations,
		NewAssetService(nil, nil, false, 0, nil),
		NewReportService(writer, nil),
		nil,
	)
}

func TestPipelineService_Run_AllSteps(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	wantOrder := []string{"goalies", "stats", "divisions", "formations", "logos", "report"}
	if len(result.Steps) != len(wantOrder) {
		t.Fatalf("unexpected step count: got=%d want=%d", len(result.Steps), len(wantOrder))
	}
	for i, row := range result.Steps {
		if row.Step != wantOrder[i] {
			t.Fatalf("unexpected step order: got=%s want=%s at %d", row.Step, wantOrder[i], i)
		}
	}

	if result.GamesLoaded != 3 || result.Load.LoadedCount != 3 {
		t.Fatalf("unexpected load totals: %+v", result.Load)
	}
	if result.SuccessCount != 5 || result.SkippedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected outcome counts: %+v", result)
	}

	goalies := findStepRow(t, result.Steps, "goalies")
	if goalies.Status != "success" || goalies.Records != 4 {
		t.Fatalf("unexpected goalies row: %+v", goalies)
	}

	stats := findStepRow(t, result.Steps, "stats")
	if stats.Status != "success" || stats.Records != 12 {
		t.Fatalf("unexpected stats row: %+v", stats)
	}

	divisionsRow := findStepRow(t, result.Steps, "divisions")
	if divisionsRow.Status != "success" || divisionsRow.Records != 3 {
		t.Fatalf("unexpected divisions row: %+v", divisionsRow)
	}

	// The fixture publishes no logo URLs, so the pass has nothing to do.
	logos := findStepRow(t, result.Steps, "logos")
	if logos.Status != "skipped" {
		t.Fatalf("unexpected logos row: %+v", logos)
	}

	report := findStepRow(t, result.Steps, "report")
	if report.Status != "success" || report.Records != 6 {
		t.Fatalf("unexpected report row: %+v", report)
	}
	if len(result.Files) != 6 {
		t.Fatalf("unexpected artifact list: %v", result.Files)
	}
}

func TestPipelineService_Run_StatsPullsGoalies(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"stats"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(result.RequestedSteps) != 1 || result.RequestedSteps[0] != "stats" {
		t.Fatalf("unexpected requested steps: %v", result.RequestedSteps)
	}
	wantOrder := []string{"goalies", "stats", "report"}
	if len(result.Steps) != len(wantOrder) {
		t.Fatalf("unexpected step count: got=%d want=%d", len(result.Steps), len(wantOrder))
	}
	for i, row := range result.Steps {
		if row.Step != wantOrder[i] {
			t.Fatalf("unexpected step order: %+v", result.Steps)
		}
	}
}

func TestPipelineService_Run_StepAliases(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"Standings", "goalie-parsing"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(result.RequestedSteps) != 2 || result.RequestedSteps[0] != "standings" || result.RequestedSteps[1] != "goalie_parsing" {
		t.Fatalf("unexpected requested steps: %v", result.RequestedSteps)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("unexpected step count: got=%d want=3", len(result.Steps))
	}
	if result.Steps[0].Step != "goalies" || result.Steps[1].Step != "stats" {
		t.Fatalf("unexpected step order: %+v", result.Steps)
	}
}

func TestPipelineService_Run_DryRun(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}, DryRun: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	report := findStepRow(t, result.Steps, "report")
	if report.Status != "skipped" || report.Message != "dry run" {
		t.Fatalf("unexpected report row: %+v", report)
	}
	logos := findStepRow(t, result.Steps, "logos")
	if logos.Status != "skipped" {
		t.Fatalf("unexpected logos row: %+v", logos)
	}
	if writer.writtenCount() != 0 {
		t.Fatalf("dry run must write nothing, wrote %d artifacts", writer.writtenCount())
	}
	if len(result.Files) != 0 {
		t.Fatalf("dry run must list no files: %v", result.Files)
	}
}

func TestPipelineService_Run_SkipGoalies(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}, SkipGoalies: true})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	goalies := findStepRow(t, result.Steps, "goalies")
	if goalies.Status != "skipped" {
		t.Fatalf("unexpected goalies row: %+v", goalies)
	}
	if !strings.Contains(goalies.Message, "disabled") {
		t.Fatalf("unexpected goalies message: %q", goalies.Message)
	}
	// Every dressed goalie keeps an appearance, so the stats still build.
	stats := findStepRow(t, result.Steps, "stats")
	if stats.Status != "success" || stats.Records != 12 {
		t.Fatalf("unexpected stats row: %+v", stats)
	}
}

func TestPipelineService_Run_StarterFeedDownDegrades(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), stubStarterSource{err: errors.New("feed offline")}, writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	goalies := findStepRow(t, result.Steps, "goalies")
	if goalies.Status != "skipped" {
		t.Fatalf("a dead feed must degrade, not fail: %+v", goalies)
	}
	if !strings.Contains(goalies.Message, "load starter map") {
		t.Fatalf("unexpected degradation message: %q", goalies.Message)
	}
	stats := findStepRow(t, result.Steps, "stats")
	if stats.Status != "success" {
		t.Fatalf("unexpected stats row: %+v", stats)
	}
}

func TestPipelineService_Run_ReportFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{fail: map[string]error{"games.json": errors.New("disk full")}}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}})
	if err != nil {
		t.Fatalf("a report failure must not fail the run: %v", err)
	}

	report := findStepRow(t, result.Steps, "report")
	if report.Status != "failed" {
		t.Fatalf("unexpected report row: %+v", report)
	}
	if result.FailedCount != 1 {
		t.Fatalf("unexpected failed count: %+v", result)
	}
	if len(result.Files) != 5 {
		t.Fatalf("surviving sections must still land: %v", result.Files)
	}
}

func TestPipelineService_Run_LoadFailure(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, &stubLoaderGameRepo{}, pipelineFixtureStarters(), writer)

	result, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"all"}})
	if !errors.Is(err, ErrNoGameData) {
		t.Fatalf("expected ErrNoGameData, got %v", err)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("no steps must run without a season: %+v", result.Steps)
	}
}

func TestPipelineService_Run_UnsupportedStep(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	_, err := svc.Run(context.Background(), PipelineInput{Steps: []string{"bogus"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipelineService_Run_NoSteps(t *testing.T) {
	t.Parallel()

	writer := &recordingSnapshotWriter{}
	svc := pipelineFixtureService(t, pipelineFixtureRepo(), pipelineFixtureStarters(), writer)

	_, err := svc.Run(context.Background(), PipelineInput{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func findStepRow(t *testing.T, rows []PipelineStepResult, step string) PipelineStepResult {
	t.Helper()
	for _, row := range rows {
		if row.Step == step {
			return row
		}
	}
	t.Fatalf("step %s not found in %+v", step, rows)
	return PipelineStepResult{}
}
