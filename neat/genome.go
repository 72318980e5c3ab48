package neat

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrInvalidGenome is returned when a genome edit would break a genome invariant.
var ErrInvalidGenome = errors.New("invalid genome")

// DefaultAddConnectionAttempts bounds the retries of AddConnectionMutation.
const DefaultAddConnectionAttempts = 20

// Genome is the evolvable description of one neural controller.
// Genes live in dense slices indexed through side maps; iteration order is
// insertion order. A Genome is owned by one caller at a time and is not safe
// for concurrent use.
type Genome struct {
	nodes     []NodeGene
	nodeIndex map[int]int // node ID -> position in nodes
	conns     []ConnectionGene
	connIndex map[int]int // innovation -> position in conns

	innovation InnovationGenerator

	// HiddenActivation is given to nodes created by AddNodeMutation.
	// The zero value is Linear.
	HiddenActivation Activation
}

// SeedConnection biases AddConnectionMutation on an unconnected genome: with
// probability Prob the new connection is attached to node NodeID. The zero
// value disables the bias.
type SeedConnection struct {
	NodeID int
	Prob   float64
}

func newEmptyGenome() *Genome {
	return &Genome{
		nodeIndex: make(map[int]int),
		connIndex: make(map[int]int),
	}
}

// NewGenome creates an unconnected genome with the given number of input and
// output nodes. Inputs get IDs 0..inputs-1, outputs follow directly after.
func NewGenome(inputs, outputs int) (*Genome, error) {
	if inputs <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("%w: need at least one input and one output (got %d inputs, %d outputs)", ErrInvalidGenome, inputs, outputs)
	}
	g := newEmptyGenome()
	for i := 0; i < inputs; i++ {
		g.insertNode(NewNodeGene(i, InputNode, g.HiddenActivation))
	}
	for i := 0; i < outputs; i++ {
		g.insertNode(NewNodeGene(inputs+i, OutputNode, g.HiddenActivation))
	}
	return g, nil
}

// Copy returns a fully independent clone, including innovation counter progress.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		nodes:            make([]NodeGene, len(g.nodes)),
		nodeIndex:        make(map[int]int, len(g.nodeIndex)),
		conns:            make([]ConnectionGene, len(g.conns)),
		connIndex:        make(map[int]int, len(g.connIndex)),
		innovation:       g.innovation,
		HiddenActivation: g.HiddenActivation,
	}
	copy(c.nodes, g.nodes)
	copy(c.conns, g.conns)
	for k, v := range g.nodeIndex {
		c.nodeIndex[k] = v
	}
	for k, v := range g.connIndex {
		c.connIndex[k] = v
	}
	return c
}

// --------------------------- Accessors ---------------------------

// Nodes returns a copy of the node genes in genome order.
func (g *Genome) Nodes() []NodeGene {
	out := make([]NodeGene, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Connections returns a copy of the connection genes in genome order.
func (g *Genome) Connections() []ConnectionGene {
	out := make([]ConnectionGene, len(g.conns))
	copy(out, g.conns)
	return out
}

// Node looks up a node gene by ID.
func (g *Genome) Node(id int) (NodeGene, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return NodeGene{}, false
	}
	return g.nodes[i], true
}

// Connection looks up a connection gene by innovation number.
func (g *Genome) Connection(innovation int) (ConnectionGene, bool) {
	i, ok := g.connIndex[innovation]
	if !ok {
		return ConnectionGene{}, false
	}
	return g.conns[i], true
}

func (g *Genome) NodeCount() int       { return len(g.nodes) }
func (g *Genome) ConnectionCount() int { return len(g.conns) }

// InputIDs returns the input node IDs in genome order.
func (g *Genome) InputIDs() []int { return g.idsOfType(InputNode) }

// OutputIDs returns the output node IDs in genome order.
func (g *Genome) OutputIDs() []int { return g.idsOfType(OutputNode) }

// HiddenIDs returns the hidden node IDs in genome order.
func (g *Genome) HiddenIDs() []int { return g.idsOfType(HiddenNode) }

func (g *Genome) idsOfType(t NodeType) []int {
	ids := []int{}
	for _, n := range g.nodes {
		if n.Type == t {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// NextInnovation returns the innovation number the next new connection will get.
func (g *Genome) NextInnovation() int {
	return g.innovation.Peek()
}

// GetNextInnovation returns a fresh innovation number and advances the counter.
func (g *Genome) GetNextInnovation() int {
	return g.innovation.Next()
}

// MaxInnovation returns the largest connection innovation, or -1 without connections.
func (g *Genome) MaxInnovation() int {
	m := -1
	for _, c := range g.conns {
		if c.Innovation > m {
			m = c.Innovation
		}
	}
	return m
}

// MaxNodeID returns the largest node ID, or -1 for an empty genome.
func (g *Genome) MaxNodeID() int {
	m := -1
	for _, n := range g.nodes {
		if n.ID > m {
			m = n.ID
		}
	}
	return m
}

// --------------------------- Editing ---------------------------

// AddNode inserts a node gene. The ID must be unused.
func (g *Genome) AddNode(n NodeGene) error {
	if _, exists := g.nodeIndex[n.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %d", ErrInvalidGenome, n.ID)
	}
	g.insertNode(n)
	return nil
}

// AddConnection inserts a connection gene. Both endpoints must exist and the
// innovation must be unused; the innovation counter is raised past it.
func (g *Genome) AddConnection(c ConnectionGene) error {
	if _, exists := g.connIndex[c.Innovation]; exists {
		return fmt.Errorf("%w: duplicate innovation %d", ErrInvalidGenome, c.Innovation)
	}
	if _, ok := g.nodeIndex[c.In]; !ok {
		return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.In)
	}
	if _, ok := g.nodeIndex[c.Out]; !ok {
		return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.Out)
	}
	g.insertConn(c)
	return nil
}

// SetWeight changes the weight of an existing connection.
func (g *Genome) SetWeight(innovation int, w float64) bool {
	i, ok := g.connIndex[innovation]
	if !ok {
		return false
	}
	g.conns[i].Weight = w
	return true
}

// SetExpressed changes the expression flag of an existing connection.
func (g *Genome) SetExpressed(innovation int, expressed bool) bool {
	i, ok := g.connIndex[innovation]
	if !ok {
		return false
	}
	g.conns[i].Expressed = expressed
	return true
}

// Validate checks that every connection references existing nodes and that
// the innovation counter is ahead of every stored innovation.
func (g *Genome) Validate() error {
	for _, c := range g.conns {
		if _, ok := g.nodeIndex[c.In]; !ok {
			return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.In)
		}
		if _, ok := g.nodeIndex[c.Out]; !ok {
			return fmt.Errorf("%w: connection %d references missing node %d", ErrInvalidGenome, c.Innovation, c.Out)
		}
		if c.Innovation >= g.innovation.Peek() {
			return fmt.Errorf("%w: innovation counter %d not ahead of connection %d", ErrInvalidGenome, g.innovation.Peek(), c.Innovation)
		}
	}
	return nil
}

func (g *Genome) insertNode(n NodeGene) {
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Genome) insertConn(c ConnectionGene) {
	g.connIndex[c.Innovation] = len(g.conns)
	g.conns = append(g.conns, c)
	g.innovation.Observe(c.Innovation)
}

// removeNode deletes node id and every connection touching it.
func (g *Genome) removeNode(id int) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
	g.nodeIndex = make(map[int]int, len(g.nodes))
	for j, n := range g.nodes {
		g.nodeIndex[n.ID] = j
	}

	kept := g.conns[:0]
	for _, c := range g.conns {
		if !c.Touches(id) {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	g.connIndex = make(map[int]int, len(g.conns))
	for j, c := range g.conns {
		g.connIndex[c.Innovation] = j
	}
}

// hasPair scans every connection for one joining a and b in either direction.
func (g *Genome) hasPair(a, b int) bool {
	for _, c := range g.conns {
		if c.Joins(a, b) {
			return true
		}
	}
	return false
}

// nextNodeID counts up from the node count until it finds an unused ID.
func (g *Genome) nextNodeID() int {
	id := len(g.nodes)
	for {
		if _, exists := g.nodeIndex[id]; !exists {
			return id
		}
		id++
	}
}

// --------------------------- Structural mutations ---------------------------

// AddNodeMutation splits a random connection: the connection is disabled and a
// new hidden node is wired in with weights 1.0 (in) and the old weight (out).
// It fails only when the genome has no connections.
func (g *Genome) AddNodeMutation(rng *rand.Rand) bool {
	if len(g.conns) == 0 {
		return false
	}
	i := rng.Intn(len(g.conns))
	split := g.conns[i]
	g.conns[i].Expressed = false

	id := g.nextNodeID()
	g.insertNode(NewNodeGene(id, HiddenNode, g.HiddenActivation))
	g.insertConn(ConnectionGene{Innovation: g.innovation.Next(), In: split.In, Out: id, Weight: 1.0, Expressed: true})
	g.insertConn(ConnectionGene{Innovation: g.innovation.Next(), In: id, Out: split.Out, Weight: split.Weight, Expressed: true})
	return true
}

// RemoveNodeMutation picks a random node and removes it, with all of its
// connections, if it is hidden. Input and output nodes are never removed.
func (g *Genome) RemoveNodeMutation(rng *rand.Rand) bool {
	if len(g.nodes) == 0 {
		return false
	}
	n := g.nodes[rng.Intn(len(g.nodes))]
	if n.Type != HiddenNode {
		return false
	}
	g.removeNode(n.ID)
	return true
}

// AddConnectionMutation tries up to attempts times to connect two unconnected
// nodes. Input-Input and Output-Output pairs are rejected and a pair is never
// connected twice, whatever the direction. Edges that would run into an input
// or out of an output towards a hidden node are reversed.
func (g *Genome) AddConnectionMutation(rng *rand.Rand, seed SeedConnection, attempts int) bool {
	if len(g.nodes) == 0 {
		return false
	}
	if attempts <= 0 {
		attempts = DefaultAddConnectionAttempts
	}
	for a := 0; a < attempts; a++ {
		n1 := g.nodes[rng.Intn(len(g.nodes))]
		n2 := g.nodes[rng.Intn(len(g.nodes))]
		if len(g.conns) == 0 && seed.Prob > 0 && rng.Float64() < seed.Prob {
			if s, ok := g.Node(seed.NodeID); ok {
				n2 = s
			}
		}

		if n1.Type == InputNode && n2.Type == InputNode {
			continue
		}
		if n1.Type == OutputNode && n2.Type == OutputNode {
			continue
		}
		if g.hasPair(n1.ID, n2.ID) {
			continue
		}

		if (n1.Type == HiddenNode && n2.Type == InputNode) ||
			(n1.Type == OutputNode && n2.Type == HiddenNode) ||
			(n1.Type == OutputNode && n2.Type == InputNode) {
			n1, n2 = n2, n1
		}

		g.insertConn(ConnectionGene{
			Innovation: g.innovation.Next(),
			In:         n1.ID,
			Out:        n2.ID,
			Weight:     rng.Float64()*2 - 1,
			Expressed:  true,
		})
		return true
	}
	return false
}

// InvertConnectionMutation toggles the expression of one random connection.
func (g *Genome) InvertConnectionMutation(rng *rand.Rand) bool {
	if len(g.conns) == 0 {
		return false
	}
	i := rng.Intn(len(g.conns))
	g.conns[i].Expressed = !g.conns[i].Expressed
	return true
}

// ChangeActivationMutation gives a random non-output node a random activation
// from MutableActivations. It reports false when the pick was an output node.
func (g *Genome) ChangeActivationMutation(rng *rand.Rand) bool {
	if len(g.nodes) == 0 {
		return false
	}
	i := rng.Intn(len(g.nodes))
	if g.nodes[i].Type == OutputNode {
		return false
	}
	g.nodes[i].Activation = NewActivation(MutableActivations[rng.Intn(len(MutableActivations))])
	return true
}

// ChangeCalculationMethodMutation gives a random hidden node a random
// calculation method. It reports false when the pick was not hidden.
func (g *Genome) ChangeCalculationMethodMutation(rng *rand.Rand) bool {
	if len(g.nodes) == 0 {
		return false
	}
	i := rng.Intn(len(g.nodes))
	if g.nodes[i].Type != HiddenNode {
		return false
	}
	g.nodes[i].Method = CalculationMethods[rng.Intn(len(CalculationMethods))]
	return true
}

// String returns a multi-line summary of the genome.
func (g *Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(Nodes: %d, Connections: %d, NextInnovation: %d)\n", len(g.nodes), len(g.conns), g.innovation.Peek())
	for _, n := range g.nodes {
		sb.WriteString("  " + n.String() + "\n")
	}
	for _, c := range g.conns {
		sb.WriteString("  " + c.String() + "\n")
	}
	return sb.String()
}
