package neat

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// directedGraph builds the graph of expressed connections. Self loops are not
// representable in a simple.DirectedGraph and are returned separately.
func (g *Genome) directedGraph() (*simple.DirectedGraph, []int) {
	dg := simple.NewDirectedGraph()
	for _, n := range g.nodes {
		dg.AddNode(simple.Node(n.ID))
	}
	var selfLoops []int
	for _, c := range g.conns {
		if !c.Expressed {
			continue
		}
		if c.In == c.Out {
			selfLoops = append(selfLoops, c.In)
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(c.In), simple.Node(c.Out)))
	}
	return dg, selfLoops
}

// HasCycle reports whether the expressed connections contain a cycle.
func (g *Genome) HasCycle() bool {
	dg, selfLoops := g.directedGraph()
	if len(selfLoops) > 0 {
		return true
	}
	_, err := topo.Sort(dg)
	return err != nil
}

// Cycles returns the node sets of every cycle-carrying strongly connected
// component of the expressed graph, each sorted, ordered by smallest ID.
func (g *Genome) Cycles() [][]int {
	dg, selfLoops := g.directedGraph()
	var out [][]int
	inComponent := make(map[int]bool)
	for _, comp := range topo.TarjanSCC(dg) {
		if len(comp) < 2 {
			continue
		}
		ids := make([]int, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, int(n.ID()))
			inComponent[int(n.ID())] = true
		}
		sort.Ints(ids)
		out = append(out, ids)
	}
	for _, id := range selfLoops {
		if !inComponent[id] {
			inComponent[id] = true
			out = append(out, []int{id})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
