package nn

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/alife-neat/neat"
)

var (
	// ErrInputMismatch is returned by Infer when the input vector has the wrong length.
	ErrInputMismatch = errors.New("input length mismatch")
	// ErrUnresolvedCycle is returned by Infer when neurons stay blocked on a cycle.
	ErrUnresolvedCycle = errors.New("cycle detected with no recurrence fallback available")
)

// CycleError lists the neurons that could not be evaluated.
type CycleError struct {
	NodeIDs []int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: stuck neurons %v", ErrUnresolvedCycle, e.NodeIDs)
}

func (e *CycleError) Unwrap() error { return ErrUnresolvedCycle }

// Option configures a Network.
type Option func(*Network)

// WithRecurrence enables or disables the recurrence fallback. Without it a
// cyclic network fails to evaluate. Enabled by default.
func WithRecurrence(allow bool) Option {
	return func(n *Network) { n.allowRecurrence = allow }
}

// WithStallFactor sets how many scan rounds per neuron may pass without
// progress before the evaluator looks for cycles. Defaults to 2.
func WithStallFactor(f int) Option {
	return func(n *Network) {
		if f > 0 {
			n.stallFactor = f
		}
	}
}

// WithLogger sets the logger used for recurrence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// OptionsFromConfig translates the [Network] config section into options.
func OptionsFromConfig(cfg *neat.NetworkConfig) []Option {
	return []Option{WithRecurrence(cfg.AllowRecurrence), WithStallFactor(cfg.StallFactor)}
}

// Network is the compiled, evaluable form of a genome. It is rebuilt from
// scratch whenever the genome's structure changes and is not safe for
// concurrent use.
type Network struct {
	neurons   []neuron
	index     map[int]int // node ID -> neuron index
	inputs    []int       // neuron indices of input nodes, genome order
	outputs   []int       // neuron indices of output nodes, genome order
	edgeCount int
	recurrent int

	allowRecurrence bool
	stallFactor     int
	logger          *slog.Logger
}

// Build compiles a genome into a Network. Unexpressed connections are left
// out entirely. Cycles are not checked here; they are found while evaluating.
func Build(g *neat.Genome, opts ...Option) (*Network, error) {
	nodes := g.Nodes()
	net := &Network{
		neurons:         make([]neuron, len(nodes)),
		index:           make(map[int]int, len(nodes)),
		allowRecurrence: true,
		stallFactor:     2,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(net)
	}

	for i, ng := range nodes {
		net.neurons[i] = neuron{
			id:         ng.ID,
			typ:        ng.Type,
			activation: ng.Activation,
			method:     ng.Method,
			depth:      -1,
		}
		net.index[ng.ID] = i
		switch ng.Type {
		case neat.InputNode:
			net.neurons[i].depth = 0
			net.inputs = append(net.inputs, i)
		case neat.OutputNode:
			net.outputs = append(net.outputs, i)
		}
	}

	for _, c := range g.Connections() {
		if !c.Expressed {
			continue
		}
		src, ok := net.index[c.In]
		if !ok {
			return nil, fmt.Errorf("%w: connection %d references missing node %d", neat.ErrInvalidGenome, c.Innovation, c.In)
		}
		dst, ok := net.index[c.Out]
		if !ok {
			return nil, fmt.Errorf("%w: connection %d references missing node %d", neat.ErrInvalidGenome, c.Innovation, c.Out)
		}
		slot := len(net.neurons[dst].slots)
		net.neurons[dst].slots = append(net.neurons[dst].slots, inputSlot{source: src})
		net.neurons[src].outputs = append(net.neurons[src].outputs, edge{target: dst, slot: slot, weight: c.Weight})
		net.edgeCount++
	}
	return net, nil
}

// Infer evaluates the network for one input vector and returns the output
// node values in OutputIDs order.
//
// Neurons are computed as soon as every non-recurrent input slot is filled.
// When no neuron becomes ready for StallFactor*NeuronCount consecutive scan
// rounds, the blocked neurons are taken to sit on a cycle: inside each
// cyclic component the first neuron in genome order has its blocked inputs
// turned into recurrent inputs, which read the value the source produced
// last time. This marking is permanent for the network. A *CycleError is
// only returned when the fallback was disabled with WithRecurrence(false).
func (n *Network) Infer(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputs) {
		return nil, fmt.Errorf("%w: got %d values for %d input neurons", ErrInputMismatch, len(inputs), len(n.inputs))
	}

	for i := range n.neurons {
		n.neurons[i].reset()
	}

	for i, idx := range n.inputs {
		n.neurons[idx].fire(inputs[i])
		n.propagate(idx)
	}

	pending := make([]int, 0, len(n.neurons))
	for i := range n.neurons {
		if !n.neurons[i].done {
			pending = append(pending, i)
		}
	}

	limit := n.stallFactor * len(n.neurons)
	stalled := 0
	for len(pending) > 0 {
		progressed := false
		kept := pending[:0]
		for _, idx := range pending {
			if !n.neurons[idx].ready() {
				kept = append(kept, idx)
				continue
			}
			n.neurons[idx].compute()
			n.propagate(idx)
			progressed = true
		}
		pending = kept

		if progressed {
			stalled = 0
			continue
		}
		stalled++
		if stalled < limit {
			continue
		}
		if err := n.resolveRecurrence(pending); err != nil {
			return nil, err
		}
		stalled = 0
	}

	out := make([]float64, len(n.outputs))
	for i, idx := range n.outputs {
		out[i] = n.neurons[idx].output
	}
	return out, nil
}

// propagate pushes the output of neuron idx into its targets.
func (n *Network) propagate(idx int) {
	src := &n.neurons[idx]
	for _, e := range src.outputs {
		t := &n.neurons[e.target]
		v := src.output * e.weight
		s := &t.slots[e.slot]
		if s.state != slotRecurrent {
			s.state = slotFilled
		}
		s.value = v
		if t.depth < 0 {
			t.depth = src.depth + 1
		}
	}
}

// resolveRecurrence marks blocked inputs on cycles among the pending neurons
// as recurrent. It fails when recurrence is disabled or nothing can be marked.
func (n *Network) resolveRecurrence(pending []int) error {
	if !n.allowRecurrence {
		return &CycleError{NodeIDs: n.idsOf(pending)}
	}

	isPending := make(map[int]bool, len(pending))
	dg := simple.NewDirectedGraph()
	for _, idx := range pending {
		isPending[idx] = true
		dg.AddNode(simple.Node(idx))
	}

	marked := 0
	for _, idx := range pending {
		nr := &n.neurons[idx]
		for si, s := range nr.slots {
			if s.state != slotEmpty || !isPending[s.source] {
				continue
			}
			if s.source == idx {
				nr.markRecurrent(si)
				marked++
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(s.source), simple.Node(idx)))
		}
	}

	for _, comp := range topo.TarjanSCC(dg) {
		if len(comp) < 2 {
			continue
		}
		members := make(map[int]bool, len(comp))
		first := -1
		for _, node := range comp {
			idx := int(node.ID())
			members[idx] = true
			if first == -1 || idx < first {
				first = idx
			}
		}
		nr := &n.neurons[first]
		for si, s := range nr.slots {
			if s.state == slotEmpty && members[s.source] {
				nr.markRecurrent(si)
				marked++
			}
		}
	}

	if marked == 0 {
		return &CycleError{NodeIDs: n.idsOf(pending)}
	}
	n.recurrent += marked
	n.logger.Debug("marked recurrent inputs", "count", marked, "stuck", n.idsOf(pending))
	return nil
}

func (n *Network) idsOf(indices []int) []int {
	ids := make([]int, len(indices))
	for i, idx := range indices {
		ids[i] = n.neurons[idx].id
	}
	return ids
}

// Reset clears all state carried between evaluations: values held by
// recurrent inputs and latch memories. Recurrent markings are kept.
func (n *Network) Reset() {
	for i := range n.neurons {
		nr := &n.neurons[i]
		nr.reset()
		nr.latch = 0
		for k := range nr.slots {
			nr.slots[k].value = 0
		}
	}
}

// InputIDs returns the input node IDs in the order Infer expects values.
func (n *Network) InputIDs() []int { return n.idsOf(n.inputs) }

// OutputIDs returns the output node IDs in the order Infer returns values.
func (n *Network) OutputIDs() []int { return n.idsOf(n.outputs) }

func (n *Network) NeuronCount() int { return len(n.neurons) }
func (n *Network) EdgeCount() int   { return n.edgeCount }

// RecurrentEdges returns how many inputs have been turned recurrent so far.
func (n *Network) RecurrentEdges() int { return n.recurrent }

// Depth returns the display depth of a node: inputs are 0 and every other
// neuron takes the depth of the first neuron that fed it, plus one. It is -1
// for neurons that have not been reached yet.
func (n *Network) Depth(id int) (int, bool) {
	idx, ok := n.index[id]
	if !ok {
		return 0, false
	}
	return n.neurons[idx].depth, true
}

// String returns a one-line-per-neuron description of the network.
func (n *Network) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Network(Neurons: %d, Edges: %d, Recurrent: %d)\n", len(n.neurons), n.edgeCount, n.recurrent)
	for _, nr := range n.neurons {
		fmt.Fprintf(&sb, "  %d %s %s %s depth=%d in=%d out=%d\n",
			nr.id, nr.typ, nr.activation, nr.method, nr.depth, len(nr.slots), len(nr.outputs))
	}
	return sb.String()
}
