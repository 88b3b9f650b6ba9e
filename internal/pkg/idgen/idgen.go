// Package idgen provides ID generation for persisted documents.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// PrefixedGenerator generates IDs like "turn-1b9d6bcd", matching the
// document id scheme used across the game record stores.
type PrefixedGenerator struct {
	prefix string
}

// NewPrefixed creates a new generator with the given prefix
func NewPrefixed(prefix string) *PrefixedGenerator {
	return &PrefixedGenerator{prefix: prefix}
}

// Generate creates a new ID with the format: prefix-<8 hex chars>
func (g *PrefixedGenerator) Generate() string {
	id := uuid.New()
	short := strings.ReplaceAll(id.String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", g.prefix, short)
}

// SequentialGenerator generates deterministic IDs for tests.
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s-%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}
