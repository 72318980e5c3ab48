package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/baldhumanity/alife-neat/neat"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu      sync.RWMutex
	genomes map[string]*neat.Genome
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		s.genomes = make(map[string]*neat.Genome)
	}
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, id string, g *neat.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		return errNotInitialized
	}
	s.genomes[id] = g.Copy()
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (*neat.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.genomes == nil {
		return nil, false, errNotInitialized
	}
	g, ok := s.genomes[id]
	if !ok {
		return nil, false, nil
	}
	return g.Copy(), true, nil
}

func (s *MemoryStore) DeleteGenome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		return errNotInitialized
	}
	delete(s.genomes, id)
	return nil
}

func (s *MemoryStore) ListGenomeIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.genomes == nil {
		return nil, errNotInitialized
	}
	ids := make([]string, 0, len(s.genomes))
	for id := range s.genomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
