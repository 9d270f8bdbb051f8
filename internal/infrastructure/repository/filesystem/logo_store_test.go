package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLogoStoreSaveAndHasLogo(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	store := NewLogoStore(out)

	if path, ok := store.HasLogo(context.Background(), "t-100"); ok {
		t.Fatalf("empty store reported a logo: %s", path)
	}

	blob := []byte("svg-bytes")
	path, err := store.SaveLogo(context.Background(), "t-100", ".svg", blob)
	if err != nil {
		t.Fatalf("save logo failed: %v", err)
	}
	if path != filepath.Join(out, "assets", "logos", "t-100.svg") {
		t.Fatalf("unexpected logo path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read logo: %v", err)
	}
	if !bytes.Equal(data, blob) {
		t.Fatalf("unexpected logo bytes: %s", data)
	}

	found, ok := store.HasLogo(context.Background(), "t-100")
	if !ok {
		t.Fatalf("saved logo not reported")
	}
	if found != path {
		t.Fatalf("unexpected existing path: got=%s want=%s", found, path)
	}

	// Presence is keyed by team id, not extension.
	if _, ok := store.HasLogo(context.Background(), "t-200"); ok {
		t.Fatalf("unrelated team reported a logo")
	}
}

func TestLogoStoreSaveLogo_DefaultExtension(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	store := NewLogoStore(out)

	path, err := store.SaveLogo(context.Background(), "t-300", "  ", []byte{0x89})
	if err != nil {
		t.Fatalf("save logo failed: %v", err)
	}
	if filepath.Base(path) != "t-300.png" {
		t.Fatalf("blank extension should default to png: %s", path)
	}
}
