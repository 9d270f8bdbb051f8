package id

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewRandomGenerator()

	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 32 {
		t.Fatalf("expected 32 hex characters, got %d (%q)", len(first), first)
	}
	if first == second {
		t.Fatalf("expected distinct IDs, got %q twice", first)
	}
	if strings.Trim(first, "0123456789abcdef") != "" {
		t.Fatalf("expected lowercase hex ID, got %q", first)
	}
}

func TestRandomGenerator_NewID_DeterministicSource(t *testing.T) {
	t.Parallel()

	gen := &RandomGenerator{source: bytes.NewReader([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	})}

	got, err := gen.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "0102030405060708090a0b0c0d0e0f10"; got != want {
		t.Fatalf("unexpected ID: got=%q want=%q", got, want)
	}
}

func TestRandomGenerator_NewID_SourceExhausted(t *testing.T) {
	t.Parallel()

	gen := &RandomGenerator{source: bytes.NewReader([]byte{0x01, 0x02})}

	_, err := gen.NewID()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF from exhausted source, got %v", err)
	}
}
