package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/qchockey/lheqstats/internal/domain/game"
)

// GameRepository reads per-game JSON documents from a directory, one file
// per game as the scraper drops them.
type GameRepository struct {
	dir      string
	validate *validator.Validate
}

func NewGameRepository(dir string) *GameRepository {
	return &GameRepository{
		dir:      dir,
		validate: validator.New(),
	}
}

// ListSources returns the game file names sorted lexicographically. The
// scraper names files game_<id>_<date>_..., so later rewrites of the same
// game sort after the original and win deduplication.
func (r *GameRepository) ListSources(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read games dir %s: %w", r.dir, err)
	}

	sources := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		sources = append(sources, entry.Name())
	}
	sort.Strings(sources)
	return sources, nil
}

func (r *GameRepository) Load(ctx context.Context, source string) (game.Record, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, source))
	if err != nil {
		return game.Record{}, fmt.Errorf("read game file %s: %w", source, err)
	}

	var doc gameDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return game.Record{}, fmt.Errorf("%w: decode %s: %v", game.ErrMalformed, source, err)
	}
	if err := r.validate.StructCtx(ctx, doc); err != nil {
		return game.Record{}, fmt.Errorf("%w: %s: %v", game.ErrMalformed, source, err)
	}

	rec := doc.toDomain()
	if err := rec.Validate(); err != nil {
		return game.Record{}, fmt.Errorf("%w: %s: %v", game.ErrMalformed, source, err)
	}
	return rec, nil
}
