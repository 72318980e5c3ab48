package nn

import "github.com/baldhumanity/alife-neat/neat"

// slotState tags an input slot of a neuron.
type slotState uint8

const (
	slotEmpty     slotState = iota // waiting for its source this evaluation
	slotFilled                     // holds a value for this evaluation
	slotRecurrent                  // holds the source's value from the previous evaluation
)

// inputSlot is one incoming expressed connection of a neuron. A recurrent
// slot keeps its value across evaluations.
type inputSlot struct {
	source int // neuron index
	state  slotState
	value  float64
}

// edge is one outgoing expressed connection of a neuron.
type edge struct {
	target int // neuron index
	slot   int // slot index on the target
	weight float64
}

// neuron is the compiled form of a node gene.
type neuron struct {
	id         int
	typ        neat.NodeType
	activation neat.Activation
	method     neat.CalculationMethod

	slots   []inputSlot
	outputs []edge

	output float64
	latch  float64 // sticky state of a Latch neuron
	depth  int     // -1 until assigned
	done   bool
}

// ready reports whether every non-recurrent slot has been filled.
func (n *neuron) ready() bool {
	for _, s := range n.slots {
		if s.state == slotEmpty {
			return false
		}
	}
	return true
}

// compute sums every slot in slot order and runs the calculation method.
func (n *neuron) compute() {
	sum := 0.0
	for _, s := range n.slots {
		sum += s.value
	}
	n.fire(sum)
}

// fire turns a weighted sum into the neuron's output.
func (n *neuron) fire(sum float64) {
	n.output = n.method.Calculate(sum, n.activation, n.latch)
	if n.method == neat.Latch {
		n.latch = n.output
	}
	n.done = true
}

// reset prepares the neuron for a new evaluation. Recurrent slots and the
// latch are kept.
func (n *neuron) reset() {
	n.done = false
	n.output = 0
	for i := range n.slots {
		if n.slots[i].state == slotFilled {
			n.slots[i].state = slotEmpty
			n.slots[i].value = 0
		}
	}
}

// markRecurrent makes slot i read the previous evaluation's value, starting
// from zero.
func (n *neuron) markRecurrent(i int) {
	n.slots[i].state = slotRecurrent
	n.slots[i].value = 0
}
