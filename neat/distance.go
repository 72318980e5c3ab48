package neat

import "math"

// geneAlignment counts how the genes of two genomes line up. Nodes are aligned
// by node ID and connections by innovation number.
type geneAlignment struct {
	matching int
	disjoint int
	excess   int
}

func alignKeys(a, b map[int]int) geneAlignment {
	maxA, maxB := maxKey(a), maxKey(b)
	var al geneAlignment
	for k := range a {
		switch _, ok := b[k]; {
		case ok:
			al.matching++
		case k > maxB:
			al.excess++
		default:
			al.disjoint++
		}
	}
	for k := range b {
		if _, ok := a[k]; ok {
			continue
		}
		if k > maxA {
			al.excess++
		} else {
			al.disjoint++
		}
	}
	return al
}

func maxKey(m map[int]int) int {
	mx := math.MinInt
	for k := range m {
		if k > mx {
			mx = k
		}
	}
	return mx
}

func align(g1, g2 *Genome) geneAlignment {
	nodes := alignKeys(g1.nodeIndex, g2.nodeIndex)
	conns := alignKeys(g1.connIndex, g2.connIndex)
	return geneAlignment{
		matching: nodes.matching + conns.matching,
		disjoint: nodes.disjoint + conns.disjoint,
		excess:   nodes.excess + conns.excess,
	}
}

// CountMatchingGenes counts node IDs and innovations present in both genomes.
func CountMatchingGenes(g1, g2 *Genome) int { return align(g1, g2).matching }

// CountDisjointGenes counts genes present in only one genome that fall within
// the other genome's range.
func CountDisjointGenes(g1, g2 *Genome) int { return align(g1, g2).disjoint }

// CountExcessGenes counts genes present in only one genome that lie beyond the
// other genome's largest key.
func CountExcessGenes(g1, g2 *Genome) int { return align(g1, g2).excess }

// AverageWeightDifference is the mean absolute weight delta over matching
// connections. It is NaN when no connection matches; see DistanceComparable.
func AverageWeightDifference(g1, g2 *Genome) float64 {
	sum := 0.0
	matching := 0
	for _, c1 := range g1.conns {
		if c2, ok := g2.Connection(c1.Innovation); ok {
			sum += math.Abs(c1.Weight - c2.Weight)
			matching++
		}
	}
	if matching == 0 {
		return math.NaN()
	}
	return sum / float64(matching)
}

// DistanceComparable reports whether the genomes share at least one connection
// innovation, i.e. whether AverageWeightDifference is defined.
func DistanceComparable(g1, g2 *Genome) bool {
	for _, c := range g1.conns {
		if _, ok := g2.connIndex[c.Innovation]; ok {
			return true
		}
	}
	return false
}

// CompatibilityDistance combines the gene counts and weight difference:
// excess*c1 + disjoint*c2 + weightDiff*c3. The result is NaN for genomes that
// are not DistanceComparable; callers must guard that case.
func CompatibilityDistance(g1, g2 *Genome, c1, c2, c3 float64) float64 {
	al := align(g1, g2)
	return float64(al.excess)*c1 + float64(al.disjoint)*c2 + AverageWeightDifference(g1, g2)*c3
}
