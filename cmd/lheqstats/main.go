package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qchockey/lheqstats/internal/app"
	"github.com/qchockey/lheqstats/internal/config"
	"github.com/qchockey/lheqstats/internal/observability"
	idgen "github.com/qchockey/lheqstats/internal/platform/id"
	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	steps := flag.String("steps", "all", "comma-separated steps to run: goalies,stats,divisions,formations,logos or all")
	skipGoalies := flag.Bool("skip-goalies", false, "ignore the starting-goalie feed and credit every dressed goalie")
	skipLogos := flag.Bool("skip-logos", false, "do not download team logos")
	dryRun := flag.Bool("dry-run", false, "compute everything but write no artifacts")
	seeded := flag.Bool("seed", false, "run against the built-in sample season instead of scraped inputs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, flushLogs, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		logging.NewJSON(cfg.LogLevel).Error("betterstack init failed", "error", err)
		return 1
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := flushLogs(ctx); err != nil {
			logger.Warn("log flush failed", "error", err)
		}
	}()

	shutdownTraces, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("uptrace init failed", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTraces(ctx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("pyroscope init failed", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("profiler stop failed", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("pprof server failed to start", "error", err)
		return 1
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Warn("pprof shutdown failed", "error", err)
		}
	}()

	runID, err := idgen.NewRandomGenerator().NewID()
	if err != nil {
		logger.Error("run id generation failed", "error", err)
		return 1
	}
	logger = logger.With("run_id", runID)

	var pipeline *usecase.PipelineService
	if *seeded {
		pipeline, err = app.NewSeededPipeline(cfg, logger)
	} else {
		pipeline, err = app.NewPipeline(cfg, logger)
	}
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "season build starting",
		"steps", *steps,
		"seeded", *seeded,
		"dry_run", *dryRun,
		"games_dir", cfg.GamesDir,
		"output_dir", cfg.OutputDir,
	)

	started := time.Now()
	result, runErr := pipeline.Run(ctx, usecase.PipelineInput{
		Steps:       strings.Split(*steps, ","),
		SkipGoalies: *skipGoalies,
		SkipLogos:   *skipLogos,
		DryRun:      *dryRun,
	})

	for _, row := range result.Steps {
		if row.Status == "failed" {
			logger.WarnContext(ctx, "step failed", "step", row.Step, "message", row.Message)
		}
	}
	logger.InfoContext(ctx, "season build finished",
		"duration_ms", time.Since(started).Milliseconds(),
		"steps", result.StepCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"games", result.GamesLoaded,
		"files", len(result.Files),
	)
	if runErr != nil {
		logger.ErrorContext(ctx, "season build failed", "error", runErr)
		return 1
	}
	return 0
}
