package nn

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/alife-neat/neat"
)

type edgeSpec struct {
	in, out int
	weight  float64
}

// handGenome builds a genome with one input (0), one output (1), the given
// hidden nodes and connections numbered in order.
func handGenome(t *testing.T, hidden []neat.NodeGene, edges []edgeSpec) *neat.Genome {
	t.Helper()
	g, err := neat.NewGenome(1, 1)
	require.NoError(t, err)
	for _, n := range hidden {
		require.NoError(t, g.AddNode(n))
	}
	for i, e := range edges {
		require.NoError(t, g.AddConnection(neat.ConnectionGene{Innovation: i, In: e.in, Out: e.out, Weight: e.weight, Expressed: true}))
	}
	return g
}

func hiddenNode(id int) neat.NodeGene {
	return neat.NewNodeGene(id, neat.HiddenNode, neat.NewActivation(neat.Linear))
}

func mustBuild(t *testing.T, g *neat.Genome, opts ...Option) *Network {
	t.Helper()
	net, err := Build(g, opts...)
	require.NoError(t, err)
	return net
}

func mustInfer(t *testing.T, net *Network, inputs ...float64) []float64 {
	t.Helper()
	out, err := net.Infer(inputs)
	require.NoError(t, err)
	return out
}

func TestInferSingleEdge(t *testing.T) {
	g := handGenome(t, nil, []edgeSpec{{0, 1, 0.5}})
	net := mustBuild(t, g)

	assert.Equal(t, []float64{math.Tanh(0.5)}, mustInfer(t, net, 1.0))
	assert.Equal(t, []int{0}, net.InputIDs())
	assert.Equal(t, []int{1}, net.OutputIDs())
	assert.Equal(t, 0, net.RecurrentEdges())
}

func TestInferAfterAddNode(t *testing.T) {
	g := handGenome(t, nil, []edgeSpec{{0, 1, 0.5}})
	before := mustInfer(t, mustBuild(t, g), 1.0)

	require.True(t, g.AddNodeMutation(rand.New(rand.NewSource(1))))
	net := mustBuild(t, g)
	after := mustInfer(t, net, 1.0)

	assert.Equal(t, 3, net.NeuronCount())
	assert.Equal(t, 2, net.EdgeCount())
	assert.InDelta(t, before[0], after[0], 1e-9)
}

func TestInferInputMismatch(t *testing.T) {
	net := mustBuild(t, handGenome(t, nil, []edgeSpec{{0, 1, 0.5}}))

	_, err := net.Infer(nil)
	assert.ErrorIs(t, err, ErrInputMismatch)
	_, err = net.Infer([]float64{1, 2})
	assert.ErrorIs(t, err, ErrInputMismatch)
}

func TestUnexpressedConnectionsAreSkipped(t *testing.T) {
	g := handGenome(t, nil, []edgeSpec{{0, 1, 0.5}})
	g.SetExpressed(0, false)
	net := mustBuild(t, g)

	assert.Equal(t, 0, net.EdgeCount())
	assert.Equal(t, []float64{0}, mustInfer(t, net, 1.0))
}

func TestDepth(t *testing.T) {
	g := handGenome(t, []neat.NodeGene{hiddenNode(2)}, []edgeSpec{{0, 2, 1}, {2, 1, 1}, {0, 1, 1}})
	net := mustBuild(t, g)

	d, ok := net.Depth(2)
	require.True(t, ok)
	assert.Equal(t, -1, d)

	mustInfer(t, net, 1.0)
	for id, want := range map[int]int{0: 0, 1: 1, 2: 1} {
		d, ok := net.Depth(id)
		require.True(t, ok)
		assert.Equal(t, want, d, "node %d", id)
	}
	_, ok = net.Depth(99)
	assert.False(t, ok)
	assert.Contains(t, net.String(), "Network(Neurons: 3, Edges: 3, Recurrent: 0)")
}

// acyclicGenomes evolves genomes without Latch nodes and keeps the acyclic ones.
func acyclicGenomes(t *testing.T, n int) []*neat.Genome {
	t.Helper()
	rates := neat.MutationRates{Amount: 1, WeightProb: 0.9, NeuroProb: 0.5, DropoutProb: 0.05}
	opts := neat.MutationOptions{MutateChance: 1}
	var out []*neat.Genome
	for seed := int64(1); len(out) < n && seed < 1000; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g, err := neat.NewGenome(3, 2)
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			neat.Mutate(g, rng, rates, opts)
		}
		if g.ConnectionCount() > 0 && !g.HasCycle() {
			out = append(out, g)
		}
	}
	require.Len(t, out, n)
	return out
}

func TestInferDeterministic(t *testing.T) {
	for _, g := range acyclicGenomes(t, 10) {
		net := mustBuild(t, g)
		first := mustInfer(t, net, 0.3, -0.7, 1.2)
		second := mustInfer(t, net, 0.3, -0.7, 1.2)
		assert.Equal(t, first, second)
		assert.Equal(t, 0, net.RecurrentEdges())
	}
}

func TestAcyclicNetworksNeverStall(t *testing.T) {
	for _, g := range acyclicGenomes(t, 10) {
		net := mustBuild(t, g, WithRecurrence(false), WithStallFactor(1))
		_, err := net.Infer([]float64{1, 1, 1})
		assert.NoError(t, err)
	}
}

func TestRecurrentSelfLoop(t *testing.T) {
	g := handGenome(t, []neat.NodeGene{hiddenNode(2)}, []edgeSpec{{0, 2, 1}, {2, 2, 0.5}, {2, 1, 1}})
	net := mustBuild(t, g)

	assert.InDelta(t, math.Tanh(1), mustInfer(t, net, 1)[0], 1e-12)
	assert.Equal(t, 1, net.RecurrentEdges())
	assert.InDelta(t, math.Tanh(1.5), mustInfer(t, net, 1)[0], 1e-12)
	assert.InDelta(t, math.Tanh(1.75), mustInfer(t, net, 1)[0], 1e-12)

	net.Reset()
	assert.InDelta(t, math.Tanh(1), mustInfer(t, net, 1)[0], 1e-12)
	assert.Equal(t, 1, net.RecurrentEdges())
}

func TestRecurrentCycle(t *testing.T) {
	g := handGenome(t, []neat.NodeGene{hiddenNode(2), hiddenNode(3)},
		[]edgeSpec{{0, 2, 1}, {2, 3, 1}, {3, 2, 1}, {3, 1, 1}})
	net := mustBuild(t, g)

	assert.InDelta(t, math.Tanh(1), mustInfer(t, net, 1)[0], 1e-12)
	assert.Equal(t, 1, net.RecurrentEdges())
	assert.InDelta(t, math.Tanh(2), mustInfer(t, net, 1)[0], 1e-12)
	assert.Equal(t, 1, net.RecurrentEdges())
}

func TestCycleWithoutRecurrence(t *testing.T) {
	g := handGenome(t, []neat.NodeGene{hiddenNode(2), hiddenNode(3)},
		[]edgeSpec{{0, 2, 1}, {2, 3, 1}, {3, 2, 1}, {3, 1, 1}})
	net := mustBuild(t, g, WithRecurrence(false))

	_, err := net.Infer([]float64{1})
	require.ErrorIs(t, err, ErrUnresolvedCycle)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []int{1, 2, 3}, cycleErr.NodeIDs)
}

func TestFirstStallIsNotFatalByDefault(t *testing.T) {
	g := handGenome(t, []neat.NodeGene{hiddenNode(2), hiddenNode(3)},
		[]edgeSpec{{0, 2, 1}, {2, 3, 1}, {3, 2, 1}, {3, 1, 1}})
	net := mustBuild(t, g, WithStallFactor(1))

	_, err := net.Infer([]float64{1})
	require.NoError(t, err)
	assert.False(t, errors.Is(err, ErrUnresolvedCycle))
	assert.Equal(t, 1, net.RecurrentEdges())
}

func TestRandomCyclicNetworksEvaluate(t *testing.T) {
	rates := neat.MutationRates{Amount: 1, WeightProb: 0.9, NeuroProb: 0.6, BiasProb: 0.2, DropoutProb: 0.05}
	opts := neat.MutationOptions{MutateChance: 1}
	cyclic := 0
	for seed := int64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g, err := neat.NewGenome(3, 2)
		require.NoError(t, err)
		for i := 0; i < 40; i++ {
			neat.Mutate(g, rng, rates, opts)
		}
		if g.HasCycle() {
			cyclic++
		}
		net := mustBuild(t, g)
		for i := 0; i < 3; i++ {
			out, err := net.Infer([]float64{0.5, -0.5, 1})
			require.NoError(t, err, "seed %d", seed)
			require.Len(t, out, 2)
		}
	}
	assert.Greater(t, cyclic, 0)
}

func TestLatchKeepsStateBetweenCalls(t *testing.T) {
	latch := neat.NodeGene{ID: 2, Type: neat.HiddenNode, Activation: neat.NewActivation(neat.Linear), Method: neat.Latch}
	g := handGenome(t, []neat.NodeGene{latch}, []edgeSpec{{0, 2, 1}, {2, 1, 1}})
	net := mustBuild(t, g)

	assert.Equal(t, math.Tanh(0), mustInfer(t, net, 0.5)[0], "below threshold")
	assert.Equal(t, math.Tanh(1), mustInfer(t, net, 0.9)[0], "switches on")

	// Same input as the first call, different result: the latch is sticky.
	assert.Equal(t, math.Tanh(1), mustInfer(t, net, 0.5)[0])
	assert.Equal(t, math.Tanh(0), mustInfer(t, net, 0)[0], "released")

	mustInfer(t, net, 0.9)
	net.Reset()
	assert.Equal(t, math.Tanh(0), mustInfer(t, net, 0.5)[0])
}
