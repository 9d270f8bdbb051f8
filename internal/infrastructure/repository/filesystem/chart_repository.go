package filesystem

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/qchockey/lheqstats/internal/domain/division"
)

type chartDocument struct {
	Divisions []chartGroupDocument `json:"divisions" validate:"required,min=1,dive"`
	Aliases   map[string]string    `json:"aliases"`
}

type chartGroupDocument struct {
	Name  string   `json:"name" validate:"required"`
	Teams []string `json:"teams" validate:"required,min=1,dive,required"`
}

// ChartRepository reads the division reference chart. Divisions are an
// ordered array because declaration order breaks matching ties.
type ChartRepository struct {
	path     string
	validate *validator.Validate
}

func NewChartRepository(path string) *ChartRepository {
	return &ChartRepository{
		path:     path,
		validate: validator.New(),
	}
}

// GetChart decodes the chart file and lays the file's aliases over the
// built-in defaults.
func (r *ChartRepository) GetChart(ctx context.Context) (division.Chart, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return division.Chart{}, fmt.Errorf("read division chart %s: %w", r.path, err)
	}

	var doc chartDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return division.Chart{}, fmt.Errorf("decode division chart %s: %w", r.path, err)
	}
	if err := r.validate.StructCtx(ctx, doc); err != nil {
		return division.Chart{}, fmt.Errorf("division chart %s: %w", r.path, err)
	}

	chart := division.Chart{
		Groups:  make([]division.Group, 0, len(doc.Divisions)),
		Aliases: division.DefaultAliases(),
	}
	for _, group := range doc.Divisions {
		teams := make([]string, 0, len(group.Teams))
		for _, team := range group.Teams {
			teams = append(teams, strings.TrimSpace(team))
		}
		chart.Groups = append(chart.Groups, division.Group{
			Name:  strings.TrimSpace(group.Name),
			Teams: teams,
		})
	}
	for from, to := range doc.Aliases {
		chart.Aliases[from] = to
	}
	return chart, nil
}
