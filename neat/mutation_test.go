package neat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateSkipped(t *testing.T) {
	g := singleEdgeGenome(t, 0.5)
	before := g.String()

	rates := MutationRates{Amount: 1, WeightProb: 1, NeuroProb: 1, BiasProb: 1, DropoutProb: 1}
	log := Mutate(g, newRand(1), rates, MutationOptions{MutateChance: 0})

	assert.Equal(t, "skipped", log)
	assert.Equal(t, before, g.String())
}

func TestMutateNothingFires(t *testing.T) {
	g := singleEdgeGenome(t, 0.5)
	before := g.String()

	log := Mutate(g, newRand(1), MutationRates{Amount: 1}, MutationOptions{MutateChance: 1})

	assert.Equal(t, "none", log)
	assert.Equal(t, before, g.String())
}

func TestMutateIsReproducible(t *testing.T) {
	base := evolvedGenome(t, 21, 10)
	rates := MutationRates{Amount: 0.5, WeightProb: 0.5, NeuroProb: 0.5, BiasProb: 0.5, DropoutProb: 0.5}
	opts := DefaultMutationOptions()

	a, b := base.Copy(), base.Copy()
	rngA, rngB := newRand(77), newRand(77)
	for i := 0; i < 25; i++ {
		assert.Equal(t, Mutate(a, rngA, rates, opts), Mutate(b, rngB, rates, opts))
	}
	textA, err := a.MarshalText()
	require.NoError(t, err)
	textB, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, string(textA), string(textB))
}

func TestMutateWeightRange(t *testing.T) {
	g := singleEdgeGenome(t, 0)
	rates := MutationRates{Amount: 0.5, WeightProb: 1}

	log := Mutate(g, newRand(5), rates, MutationOptions{MutateChance: 1})

	assert.True(t, strings.Contains(log, "Weight:innovation 0"), log)
	c, ok := g.Connection(0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, c.Weight, -1.0)
	assert.LessOrEqual(t, c.Weight, 1.0)
}

func TestMutateWeightPerturbOrReplace(t *testing.T) {
	rates := MutationRates{Amount: 0.5, WeightProb: 1}
	opts := MutationOptions{MutateChance: 1}

	const runs = 2000
	perturbed, replaced := 0, 0
	for seed := int64(1); seed <= runs; seed++ {
		g := singleEdgeGenome(t, 10)
		Mutate(g, newRand(seed), rates, opts)
		c, ok := g.Connection(0)
		require.True(t, ok)
		switch {
		case c.Weight >= 9 && c.Weight <= 11:
			perturbed++
		case c.Weight >= -1 && c.Weight <= 1:
			replaced++
		default:
			t.Fatalf("seed %d: weight %v is neither perturbed nor replaced", seed, c.Weight)
		}
	}

	assert.Equal(t, runs, perturbed+replaced)
	assert.InDelta(t, 0.75, float64(perturbed)/runs, 0.05)
	assert.InDelta(t, 0.25, float64(replaced)/runs, 0.05)
}

func countEntries(log, op string) int {
	n := 0
	for _, entry := range strings.Split(log, "; ") {
		if strings.HasPrefix(entry, op+":") {
			n++
		}
	}
	return n
}

func TestMutateAddConnectionGatedByWeightProb(t *testing.T) {
	rates := MutationRates{NeuroProb: 1}
	opts := MutationOptions{MutateChance: 1}
	for seed := int64(1); seed <= 20; seed++ {
		g, err := NewGenome(3, 2)
		require.NoError(t, err)

		log := Mutate(g, newRand(seed), rates, opts)

		assert.Zero(t, countEntries(log, "AddConnection"), "seed %d: %s", seed, log)
		assert.Equal(t, 0, g.ConnectionCount())
	}
}

func TestMutateAddConnectionAttempts(t *testing.T) {
	// 3*NeuroProb = 0.3 rounds up to a single attempt.
	rates := MutationRates{Amount: 0.5, NeuroProb: 0.1, WeightProb: 1}
	opts := MutationOptions{MutateChance: 1}
	for seed := int64(1); seed <= 20; seed++ {
		g, err := NewGenome(3, 2)
		require.NoError(t, err)

		log := Mutate(g, newRand(seed), rates, opts)

		assert.Equal(t, 1, countEntries(log, "AddConnection"), "seed %d: %s", seed, log)
		assert.LessOrEqual(t, g.ConnectionCount(), 1)
	}
}

func TestMutateGrowsStructure(t *testing.T) {
	g, err := NewGenome(4, 2)
	require.NoError(t, err)
	rng := newRand(8)
	rates := MutationRates{Amount: 0.5, WeightProb: 0.9, NeuroProb: 0.6, BiasProb: 0.2, DropoutProb: 0.05}
	opts := DefaultMutationOptions()

	seen := map[string]bool{}
	for i := 0; i < 150; i++ {
		for _, entry := range strings.Split(Mutate(g, rng, rates, opts), "; ") {
			op, _, _ := strings.Cut(entry, ":")
			seen[op] = true
		}
		require.NoError(t, g.Validate())
	}

	assert.NotEmpty(t, g.HiddenIDs())
	assert.Greater(t, g.ConnectionCount(), 0)
	for _, op := range []string{"AddNode", "AddConnection", "Weight", "ChangeActivation"} {
		assert.True(t, seen[op], "operator %s never fired", op)
	}
}
