package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// singleEdgeGenome is Input{0} -> Output{1} with weight w.
func singleEdgeGenome(t *testing.T, w float64) *Genome {
	t.Helper()
	g, err := NewGenome(1, 1)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(ConnectionGene{Innovation: 0, In: 0, Out: 1, Weight: w, Expressed: true}))
	return g
}

// evolvedGenome grows a genome with aggressive mutation rates.
func evolvedGenome(t *testing.T, seed int64, rounds int) *Genome {
	t.Helper()
	g, err := NewGenome(3, 2)
	require.NoError(t, err)
	rng := newRand(seed)
	rates := MutationRates{Amount: 0.5, WeightProb: 0.8, NeuroProb: 0.5, BiasProb: 0.3, DropoutProb: 0.1}
	opts := MutationOptions{MutateChance: 1, AddConnectionAttempts: DefaultAddConnectionAttempts}
	for i := 0; i < rounds; i++ {
		Mutate(g, rng, rates, opts)
	}
	require.NoError(t, g.Validate())
	return g
}

func nodeIDs(g *Genome) []int {
	ids := make([]int, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}
