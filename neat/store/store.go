// Package store persists genomes by ID.
package store

import (
	"context"
	"fmt"

	"github.com/baldhumanity/alife-neat/neat"
)

// Store saves and loads genomes by string ID. Implementations keep their own
// copy, so callers may keep mutating a genome after saving it.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, id string, g *neat.Genome) error
	GetGenome(ctx context.Context, id string) (*neat.Genome, bool, error)
	DeleteGenome(ctx context.Context, id string) error
	ListGenomeIDs(ctx context.Context) ([]string, error)
	Close() error
}

// NewStore returns an uninitialized store of the given kind: "memory" (or
// empty) or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
