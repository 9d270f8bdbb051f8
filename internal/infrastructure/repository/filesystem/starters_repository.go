package filesystem

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/qchockey/lheqstats/internal/domain/goalie"
)

type starterGameDocument struct {
	Goalies []starterRefDocument `json:"goalies"`
	Count   int                  `json:"count"`
}

type starterRefDocument struct {
	Name   string         `json:"name"`
	Number flexibleString `json:"number"`
	Line   int            `json:"line"`
}

// StarterRepository reads the starting-goalie map emitted by the gamesheet
// extraction job: game id keys, extracted starter refs per game.
type StarterRepository struct {
	path string
}

func NewStarterRepository(path string) *StarterRepository {
	return &StarterRepository{path: path}
}

func (r *StarterRepository) GetStarterMap(ctx context.Context) (goalie.StarterMap, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read starting goalies %s: %w", r.path, err)
	}

	var doc map[string]starterGameDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode starting goalies %s: %w", r.path, err)
	}

	out := make(goalie.StarterMap, len(doc))
	for gameID, entry := range doc {
		gameID = strings.TrimSpace(gameID)
		if gameID == "" {
			continue
		}
		starters := goalie.GameStarters{
			Count:   entry.Count,
			Goalies: make([]goalie.StarterRef, 0, len(entry.Goalies)),
		}
		for _, ref := range entry.Goalies {
			starters.Goalies = append(starters.Goalies, goalie.StarterRef{
				Name:   strings.TrimSpace(ref.Name),
				Number: ref.Number.String(),
				Line:   ref.Line,
			})
		}
		out[gameID] = starters
	}
	return out, nil
}
