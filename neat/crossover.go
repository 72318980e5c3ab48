package neat

import "math/rand"

// Crossover builds a child from two parents. The caller must pass the fitter
// parent first; no fitness comparison happens here.
//
// The child gets every node of moreFit. Connections whose innovation exists in
// both parents are taken from either parent with equal chance, connections only
// lessFit has are dropped and the rest are copied from moreFit. Counters are per
// genome, so diverged parents can reuse an innovation for different edges; such
// a pair always takes moreFit's gene.
func Crossover(moreFit, lessFit *Genome, rng *rand.Rand) *Genome {
	child := newEmptyGenome()
	child.HiddenActivation = moreFit.HiddenActivation

	for _, n := range moreFit.nodes {
		child.insertNode(n)
	}

	for _, c1 := range moreFit.conns {
		gene := c1
		if c2, ok := lessFit.Connection(c1.Innovation); ok && rng.Float64() < 0.5 && c2.In == c1.In && c2.Out == c1.Out {
			gene = c2
		}
		child.insertConn(gene)
	}

	// Keep the lineage counter monotonic across both parents.
	child.innovation.Observe(moreFit.innovation.Peek() - 1)
	child.innovation.Observe(lessFit.innovation.Peek() - 1)
	return child
}
