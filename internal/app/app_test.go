package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qchockey/lheqstats/internal/config"
	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/usecase"
)

func TestNewSeededPipelineRunsEndToEnd(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		OutputDir:                  t.TempDir(),
		LoaderMaxWorkers:           2,
		DivisionMatchThreshold:     0.7,
		FormationMaxForwardLines:   4,
		FormationMaxDefensePairs:   3,
		FormationMaxPowerplayUnits: 3,
		FormationMinPairWeight:     2,
		LogoMaxParallel:            2,
	}

	svc, err := NewSeededPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Run(context.Background(), usecase.PipelineInput{Steps: []string{"all"}})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if result.GamesLoaded != 5 {
		t.Fatalf("unexpected games loaded: got=%d want=5", result.GamesLoaded)
	}
	if result.FailedCount != 0 {
		t.Fatalf("unexpected failed steps: got=%d steps=%+v", result.FailedCount, result.Steps)
	}
	if result.SuccessCount != 5 {
		t.Fatalf("unexpected success count: got=%d want=5", result.SuccessCount)
	}
	if result.SkippedCount != 1 {
		t.Fatalf("unexpected skipped count: got=%d want=1", result.SkippedCount)
	}
	if len(result.Files) != 6 {
		t.Fatalf("unexpected artifact count: got=%d files=%v", len(result.Files), result.Files)
	}

	for _, name := range []string{"games.json", "teams.json", "players.json", "divisions.json", "formations.json", "standings.xlsx"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}
}

func TestNewSeededPipelineDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	cfg := config.Config{OutputDir: t.TempDir(), LoaderMaxWorkers: 2, DivisionMatchThreshold: 0.7}

	svc, err := NewSeededPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Run(context.Background(), usecase.PipelineInput{Steps: []string{"all"}, DryRun: true})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(result.Files) != 0 {
		t.Fatalf("dry run wrote artifacts: %v", result.Files)
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("output directory not empty: %d entries", len(entries))
	}
}

func TestNewPipelineWiresFilesystemInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Config{
		GamesDir:            filepath.Join(dir, "games"),
		DivisionChartPath:   filepath.Join(dir, "divisions.json"),
		StartingGoaliesPath: filepath.Join(dir, "starting_goalies.json"),
		OutputDir:           filepath.Join(dir, "out"),
		LoaderMaxWorkers:    4,
	}

	svc, err := NewPipeline(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatalf("expected pipeline service")
	}
}
