package app

import (
	"github.com/qchockey/lheqstats/external/assets"
	"github.com/qchockey/lheqstats/internal/config"
	"github.com/qchockey/lheqstats/internal/domain/division"
	"github.com/qchockey/lheqstats/internal/domain/formation"
	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
	"github.com/qchockey/lheqstats/internal/infrastructure/repository/filesystem"
	"github.com/qchockey/lheqstats/internal/infrastructure/repository/memory"
	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/platform/resilience"
	"github.com/qchockey/lheqstats/internal/usecase"
)

// NewPipeline wires the season pipeline against the scraped inputs named by
// the configuration: the games directory, the division chart, and the
// starting-goalie map.
func NewPipeline(cfg config.Config, logger *logging.Logger) (*usecase.PipelineService, error) {
	fetcher := assets.NewClient(assets.ClientConfig{
		Timeout:    cfg.LogoTimeout,
		MaxRetries: cfg.LogoMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LogoCircuitEnabled,
			FailureThreshold: cfg.LogoCircuitFailureCount,
			OpenTimeout:      cfg.LogoCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LogoCircuitHalfOpenMax,
		},
	})

	return buildPipeline(
		cfg,
		filesystem.NewGameRepository(cfg.GamesDir),
		filesystem.NewChartRepository(cfg.DivisionChartPath),
		filesystem.NewStarterRepository(cfg.StartingGoaliesPath),
		fetcher,
		logger,
	)
}

// NewSeededPipeline wires the pipeline against the built-in sample season so
// a run needs no scraped inputs. No fetcher is attached, so the logo step
// reports every team as skipped.
func NewSeededPipeline(cfg config.Config, logger *logging.Logger) (*usecase.PipelineService, error) {
	return buildPipeline(
		cfg,
		memory.NewGameRepository(memory.SeedGames()),
		memory.NewChartRepository(memory.SeedChart()),
		memory.NewStarterRepository(memory.SeedStarters()),
		nil,
		logger,
	)
}

func buildPipeline(
	cfg config.Config,
	games game.Repository,
	charts division.ChartRepository,
	starters goalie.StarterRepository,
	fetcher usecase.LogoFetcher,
	logger *logging.Logger,
) (*usecase.PipelineService, error) {
	formations, err := usecase.NewFormationService(formation.Config{
		MaxForwardLines:   cfg.FormationMaxForwardLines,
		MaxDefensePairs:   cfg.FormationMaxDefensePairs,
		MaxPowerplayUnits: cfg.FormationMaxPowerplayUnits,
		MinPairWeight:     cfg.FormationMinPairWeight,
	}, logger)
	if err != nil {
		return nil, err
	}

	writer := filesystem.NewSnapshotWriter(cfg.OutputDir)
	logos := filesystem.NewLogoStore(cfg.OutputDir)

	return usecase.NewPipelineService(
		usecase.NewRecordLoaderService(games, cfg.LoaderMaxWorkers, logger),
		usecase.NewGoalieCreditService(starters, logger),
		usecase.NewStatsService(logger),
		usecase.NewDivisionService(charts, cfg.DivisionMatchThreshold, logger),
		formations,
		usecase.NewAssetService(fetcher, logos, cfg.LogoFetchEnabled, cfg.LogoMaxParallel, logger),
		usecase.NewReportService(writer, logger),
		logger,
	), nil
}
