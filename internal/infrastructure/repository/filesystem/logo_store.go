package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LogoStore keeps downloaded team logos under <output>/assets/logos, one
// file per team id. Presence of any extension counts as already fetched.
type LogoStore struct {
	dir string
}

func NewLogoStore(outputDir string) *LogoStore {
	return &LogoStore{dir: filepath.Join(outputDir, "assets", "logos")}
}

func (s *LogoStore) HasLogo(ctx context.Context, teamID string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(s.dir, teamID+".*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

func (s *LogoStore) SaveLogo(ctx context.Context, teamID, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create logos dir %s: %w", s.dir, err)
	}

	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "png"
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.%s", teamID, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write logo %s: %w", path, err)
	}
	return path, nil
}
