package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/qchockey/lheqstats/internal/domain/game"
	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// RecordLoaderService reads every game file under the configured source
// directory and freezes the accepted records into a season snapshot.
type RecordLoaderService struct {
	repo       game.Repository
	maxWorkers int
	logger     *logging.Logger
}

func NewRecordLoaderService(repo game.Repository, maxWorkers int, logger *logging.Logger) *RecordLoaderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordLoaderService{
		repo:       repo,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

type LoadReport struct {
	SourceCount    int             `json:"source_count"`
	LoadedCount    int             `json:"loaded_count"`
	SkippedCount   int             `json:"skipped_count"`
	DuplicateCount int             `json:"duplicate_count"`
	Skipped        []SkippedSource `json:"skipped,omitempty"`
}

type SkippedSource struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// LoadSeason decodes all sources in parallel and returns the deduplicated
// season. A malformed file is skipped with a warning and never aborts the
// load; when two files carry the same game id the later source wins.
func (s *RecordLoaderService) LoadSeason(ctx context.Context) (*season.Snapshot, LoadReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordLoaderService.LoadSeason")
	defer span.End()

	if s.repo == nil {
		return nil, LoadReport{}, fmt.Errorf("%w: game repository is not configured", ErrDependencyUnavailable)
	}

	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("list game sources: %w", err)
	}
	sources = normalizeSources(sources)

	report := LoadReport{SourceCount: len(sources)}
	if len(sources) == 0 {
		return nil, report, fmt.Errorf("%w: no game files found", ErrNoGameData)
	}

	type loadOutcome struct {
		index  int
		source string
		record game.Record
		err    error
	}

	workerCount := normalizeLoaderWorkerCount(s.maxWorkers, len(sources))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, report, fmt.Errorf("create loader pool: %w", err)
	}
	defer pool.Release()

	results := make(chan loadOutcome, len(sources))

	var workers sync.WaitGroup
	for i, source := range sources {
		i, source := i, source
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			record, loadErr := s.repo.Load(ctx, source)
			results <- loadOutcome{
				index:  i,
				source: source,
				record: record,
				err:    loadErr,
			}
		}); err != nil {
			workers.Done()
			return nil, report, fmt.Errorf("submit source to loader pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	outcomes := make([]loadOutcome, 0, len(sources))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].index < outcomes[j].index
	})

	byID := make(map[string]game.Record, len(outcomes))
	for _, out := range outcomes {
		if out.err != nil {
			report.SkippedCount++
			report.Skipped = append(report.Skipped, SkippedSource{
				Source: out.source,
				Reason: out.err.Error(),
			})
			s.logger.WarnContext(ctx, "game record skipped", "source", out.source, "error", out.err)
			continue
		}
		if _, dup := byID[out.record.ID]; dup {
			report.DuplicateCount++
			s.logger.WarnContext(ctx, "duplicate game id, keeping later source", "game_id", out.record.ID, "source", out.source)
		}
		byID[out.record.ID] = out.record
		s.logger.DebugContext(ctx, "game file loaded", "source", out.source, "game_id", out.record.ID)
	}

	if len(byID) == 0 {
		return nil, report, fmt.Errorf("%w: all %d game files were rejected", ErrNoGameData, len(sources))
	}

	records := make([]game.Record, 0, len(byID))
	for _, rec := range byID {
		records = append(records, rec)
	}
	snapshot := season.New(records)
	report.LoadedCount = snapshot.Len()

	s.logger.InfoContext(ctx, "season loaded",
		"sources", report.SourceCount,
		"games", report.LoadedCount,
		"skipped", report.SkippedCount,
		"duplicates", report.DuplicateCount,
	)
	return snapshot, report, nil
}

func normalizeSources(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func normalizeLoaderWorkerCount(value int, sourceCount int) int {
	if sourceCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > sourceCount {
		value = sourceCount
	}
	return value
}
