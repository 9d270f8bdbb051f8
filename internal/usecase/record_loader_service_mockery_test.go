package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	gamemock "github.com/qchockey/lheqstats/internal/mocks/domain/game"
)

func TestRecordLoaderService_LoadSeason_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)

	service := NewRecordLoaderService(gameRepo, 2, nil)

	gameRepo.
		On("ListSources", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return([]string{"games/1002.json", "games/1001.json"}, nil).
		Once()
	gameRepo.
		On("Load", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "games/1001.json").
		Return(loaderRecord("1001", "2025-10-04"), nil).
		Once()
	gameRepo.
		On("Load", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "games/1002.json").
		Return(loaderRecord("1002", "2025-10-05"), nil).
		Once()

	snap, report, err := service.LoadSeason(ctx)
	if err != nil {
		t.Fatalf("load season: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("unexpected snapshot size: got=%d want=2", snap.Len())
	}
	if report.SourceCount != 2 || report.LoadedCount != 2 || report.SkippedCount != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRecordLoaderService_LoadSeason_SourceListDownUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gameRepo := gamemock.NewRepository(t)

	service := NewRecordLoaderService(gameRepo, 2, nil)

	errFeed := errors.New("games dir unreadable")
	gameRepo.
		On("ListSources", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(nil, errFeed).
		Once()

	_, _, err := service.LoadSeason(ctx)
	if !errors.Is(err, errFeed) {
		t.Fatalf("expected the listing error, got %v", err)
	}
}
