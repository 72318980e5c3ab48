package nn

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/baldhumanity/alife-neat/neat"
)

// brainState pairs a genome with the network compiled from it. A published
// state is never modified.
type brainState struct {
	genome  *neat.Genome
	network *Network
}

// Brain is an agent's controller: a genome plus its compiled network. The
// pair is swapped atomically so readers never see a network built from a
// different genome than the one reported by Genome. Infer itself must be
// called from one goroutine at a time; rebuilds may land concurrently.
type Brain struct {
	ID uuid.UUID

	state  atomic.Pointer[brainState]
	opts   []Option
	logger *slog.Logger
}

// NewBrain compiles g and wraps it in a Brain with a fresh ID. The brain
// takes ownership of g.
func NewBrain(g *neat.Genome, logger *slog.Logger, opts ...Option) (*Brain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	net, err := Build(g, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build brain network: %w", err)
	}
	b := &Brain{
		ID:     uuid.New(),
		opts:   opts,
		logger: logger,
	}
	b.state.Store(&brainState{genome: g, network: net})
	return b, nil
}

// Genome returns the genome behind the current network. Callers must not
// modify it; use Copy first.
func (b *Brain) Genome() *neat.Genome { return b.state.Load().genome }

// Network returns the current network.
func (b *Brain) Network() *Network { return b.state.Load().network }

// Infer evaluates the current network.
func (b *Brain) Infer(inputs []float64) ([]float64, error) {
	return b.state.Load().network.Infer(inputs)
}

// Mutate mutates a copy of the genome, rebuilds the network and swaps both
// in. The mutation log is returned.
func (b *Brain) Mutate(rng *rand.Rand, rates neat.MutationRates, opts neat.MutationOptions) (string, error) {
	g := b.Genome().Copy()
	log := neat.Mutate(g, rng, rates, opts)
	if err := b.Replace(g); err != nil {
		return log, err
	}
	b.logger.Debug("mutated", "brain", b.ID, "log", log)
	return log, nil
}

// MutateAsync mutates a copy of the genome and hands the rebuild to r. The
// current network keeps serving Infer until the rebuild lands. Callers
// should wait on the returned channel before mutating the same brain again.
func (b *Brain) MutateAsync(r *Rebuilder, rng *rand.Rand, rates neat.MutationRates, opts neat.MutationOptions) (string, <-chan RebuildResult, error) {
	g := b.Genome().Copy()
	log := neat.Mutate(g, rng, rates, opts)
	done, err := r.Submit(b, g)
	if err != nil {
		return log, nil, err
	}
	return log, done, nil
}

// Replace compiles g and swaps it in together with its network. On error the
// brain is left unchanged.
func (b *Brain) Replace(g *neat.Genome) error {
	net, err := Build(g, b.opts...)
	if err != nil {
		return fmt.Errorf("failed to rebuild network: %w", err)
	}
	b.swap(g, net)
	return nil
}

func (b *Brain) swap(g *neat.Genome, net *Network) {
	b.state.Store(&brainState{genome: g, network: net})
}

// Offspring creates a child brain. With a partner the child genome is the
// crossover of both parents, otherwise a copy of moreFit's genome. The child
// is then mutated and gets its own ID.
func Offspring(moreFit, lessFit *Brain, rng *rand.Rand, rates neat.MutationRates, opts neat.MutationOptions) (*Brain, string, error) {
	var g *neat.Genome
	if lessFit != nil {
		g = neat.Crossover(moreFit.Genome(), lessFit.Genome(), rng)
	} else {
		g = moreFit.Genome().Copy()
	}
	log := neat.Mutate(g, rng, rates, opts)

	net, err := Build(g, moreFit.opts...)
	if err != nil {
		return nil, log, fmt.Errorf("failed to build offspring network: %w", err)
	}
	child := &Brain{
		ID:     uuid.New(),
		opts:   moreFit.opts,
		logger: moreFit.logger,
	}
	child.swap(g, net)
	child.logger.Debug("offspring created", "brain", child.ID, "parent", moreFit.ID, "log", log)
	return child, log, nil
}
