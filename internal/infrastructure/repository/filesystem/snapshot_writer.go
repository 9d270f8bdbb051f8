package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// SnapshotWriter persists run artifacts under the output directory. JSON
// goes through the std-compatible sonic config so map keys come out sorted
// and reruns on identical input stay byte-identical.
type SnapshotWriter struct {
	dir string
}

func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir}
}

func (w *SnapshotWriter) WriteJSON(ctx context.Context, name string, payload any) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return w.WriteBinary(ctx, name, data)
}

func (w *SnapshotWriter) WriteBinary(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
