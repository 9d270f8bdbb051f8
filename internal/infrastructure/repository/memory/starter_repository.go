package memory

import (
	"context"
	"sync"

	"github.com/qchockey/lheqstats/internal/domain/goalie"
)

// StarterRepository serves a seeded starting-goalie map.
type StarterRepository struct {
	mu       sync.RWMutex
	starters goalie.StarterMap
}

func NewStarterRepository(starters goalie.StarterMap) *StarterRepository {
	return &StarterRepository{starters: starters}
}

func (r *StarterRepository) GetStarterMap(_ context.Context) (goalie.StarterMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(goalie.StarterMap, len(r.starters))
	for gameID, entry := range r.starters {
		out[gameID] = entry
	}

	return out, nil
}
