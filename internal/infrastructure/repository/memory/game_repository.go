package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/qchockey/lheqstats/internal/domain/game"
)

// GameRepository serves seeded game records. Source names follow the
// scraper's game_<id>_<date> convention so loader ordering and reporting
// behave exactly as they do against a games directory.
type GameRepository struct {
	mu     sync.RWMutex
	items  map[string]game.Record
	orders []string
}

func NewGameRepository(records []game.Record) *GameRepository {
	items := make(map[string]game.Record, len(records))
	orders := make([]string, 0, len(records))

	for _, rec := range records {
		source := fmt.Sprintf("game_%s_%s", rec.ID, rec.Date)
		items[source] = rec
		orders = append(orders, source)
	}

	return &GameRepository{
		items:  items,
		orders: orders,
	}
}

func (r *GameRepository) ListSources(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.orders))
	copy(out, r.orders)

	return out, nil
}

func (r *GameRepository) Load(_ context.Context, source string) (game.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[source]
	if !ok {
		return game.Record{}, fmt.Errorf("unknown game source %s", source)
	}

	return rec, nil
}
