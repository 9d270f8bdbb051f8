package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotWriterWriteJSON(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	writer := NewSnapshotWriter(dir)

	payload := map[string]any{
		"teams":   2,
		"games":   5,
		"columns": []string{"rank", "team"},
	}
	path, err := writer.WriteJSON(context.Background(), "summary.json", payload)
	if err != nil {
		t.Fatalf("write json failed: %v", err)
	}
	if path != filepath.Join(dir, "summary.json") {
		t.Fatalf("unexpected path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	want := `{
  "columns": [
    "rank",
    "team"
  ],
  "games": 5,
  "teams": 2
}`
	if string(data) != want {
		t.Fatalf("unexpected artifact body:\n%s", data)
	}
}

func TestSnapshotWriterWriteJSON_Deterministic(t *testing.T) {
	t.Parallel()

	writer := NewSnapshotWriter(t.TempDir())
	payload := map[string]any{"b": 2, "a": 1, "c": map[string]int{"z": 26, "y": 25}}

	path, err := writer.WriteJSON(context.Background(), "run.json", payload)
	if err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read first run: %v", err)
	}

	if _, err := writer.WriteJSON(context.Background(), "run.json", payload); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read second run: %v", err)
	}

	// Map keys must come out sorted so reruns over identical input do not
	// churn the artifacts.
	if !bytes.Equal(first, second) {
		t.Fatalf("reruns produced different bytes:\n%s\n---\n%s", first, second)
	}
}

func TestSnapshotWriterWriteJSON_EncodeFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewSnapshotWriter(dir)

	if _, err := writer.WriteJSON(context.Background(), "bad.json", make(chan int)); err == nil {
		t.Fatalf("expected encode error")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Fatalf("failed encode should not leave a file behind: %v", err)
	}
}

func TestSnapshotWriterWriteBinary(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "deep", "out")
	writer := NewSnapshotWriter(dir)

	blob := []byte{0x50, 0x4b, 0x03, 0x04}
	path, err := writer.WriteBinary(context.Background(), "standings.xlsx", blob)
	if err != nil {
		t.Fatalf("write binary failed: %v", err)
	}
	if path != filepath.Join(dir, "standings.xlsx") {
		t.Fatalf("unexpected path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Equal(data, blob) {
		t.Fatalf("unexpected artifact bytes: %v", data)
	}
}
