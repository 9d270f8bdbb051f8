package memory

import (
	"context"
	"sync"

	"github.com/qchockey/lheqstats/internal/domain/division"
)

// ChartRepository serves a seeded division chart.
type ChartRepository struct {
	mu    sync.RWMutex
	chart division.Chart
}

func NewChartRepository(chart division.Chart) *ChartRepository {
	return &ChartRepository{chart: chart}
}

func (r *ChartRepository) GetChart(_ context.Context) (division.Chart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.chart, nil
}
