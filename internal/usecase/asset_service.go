package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/qchockey/lheqstats/internal/domain/season"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// LogoFetcher downloads one image and reports the file extension implied by
// its content type.
type LogoFetcher interface {
	FetchImage(ctx context.Context, rawURL string) (data []byte, ext string, err error)
}

// LogoStore persists fetched logos. HasLogo reports an asset already on
// disk from an earlier run so the fetch can be skipped.
type LogoStore interface {
	HasLogo(ctx context.Context, teamID string) (string, bool)
	SaveLogo(ctx context.Context, teamID, ext string, data []byte) (string, error)
}

// AssetResult tallies one logo pass. Requested always equals
// Fetched+Failed+Skipped.
type AssetResult struct {
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// AssetService mirrors team logos referenced by game sheets into local
// storage. Logo delivery is best effort: individual failures are logged and
// counted, never propagated, so a flaky CDN cannot take down a stats run.
type AssetService struct {
	fetcher     LogoFetcher
	store       LogoStore
	enabled     bool
	maxParallel int
	logger      *logging.Logger
}

func NewAssetService(fetcher LogoFetcher, store LogoStore, enabled bool, maxParallel int, logger *logging.Logger) *AssetService {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AssetService{
		fetcher:     fetcher,
		store:       store,
		enabled:     enabled,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// FetchLogos downloads the newest logo of every team that has one. Teams
// without a logo URL count as skipped, as does everything when fetching is
// disabled.
func (s *AssetService) FetchLogos(ctx context.Context, snap *season.Snapshot) (AssetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssetService.FetchLogos")
	defer span.End()

	if snap == nil || snap.Len() == 0 {
		return AssetResult{}, fmt.Errorf("%w: season snapshot is empty", ErrNoGameData)
	}

	type target struct {
		teamID string
		url    string
	}
	teamIDs := snap.TeamIDs()
	result := AssetResult{Requested: len(teamIDs)}
	targets := make([]target, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		url := snap.LogoOf(teamID)
		if url == "" {
			result.Skipped++
			continue
		}
		targets = append(targets, target{teamID: teamID, url: url})
	}

	if !s.enabled || s.fetcher == nil || s.store == nil {
		result.Skipped += len(targets)
		s.logger.InfoContext(ctx, "logo fetch disabled", "skipped", result.Skipped)
		return result, nil
	}

	var fetched, failed, skipped atomic.Int32
	workers := pool.New().WithMaxGoroutines(s.maxParallel)
	for _, t := range targets {
		t := t
		workers.Go(func() {
			if ctx.Err() != nil {
				skipped.Add(1)
				return
			}
			if path, ok := s.store.HasLogo(ctx, t.teamID); ok {
				skipped.Add(1)
				s.logger.DebugContext(ctx, "logo already present", "team_id", t.teamID, "path", path)
				return
			}
			data, ext, err := s.fetcher.FetchImage(ctx, t.url)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "logo fetch failed", "team_id", t.teamID, "url", t.url, "error", err)
				return
			}
			path, err := s.store.SaveLogo(ctx, t.teamID, ext, data)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "logo save failed", "team_id", t.teamID, "error", err)
				return
			}
			fetched.Add(1)
			s.logger.DebugContext(ctx, "logo saved", "team_id", t.teamID, "path", path, "bytes", len(data))
		})
	}
	workers.Wait()

	result.Fetched = int(fetched.Load())
	result.Failed = int(failed.Load())
	result.Skipped += int(skipped.Load())
	s.logger.InfoContext(ctx, "logo pass finished",
		"requested", result.Requested,
		"fetched", result.Fetched,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}
