package division

import "context"

type ChartRepository interface {
	GetChart(ctx context.Context) (Chart, error)
}
