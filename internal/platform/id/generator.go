// Package id mints opaque identifiers for tagging pipeline runs in logs
// and traces.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

type Generator interface {
	NewID() (string, error)
}

// RandomGenerator produces 32-character hex IDs from a cryptographic
// entropy source.
type RandomGenerator struct {
	source io.Reader
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{source: rand.Reader}
}

func (g *RandomGenerator) NewID() (string, error) {
	var buf [16]byte
	if _, err := io.ReadFull(g.source, buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf[:]), nil
}
