package neat

import (
	"fmt"
	"strings"
)

// NodeType is the role of a node within the genome.
type NodeType int

const (
	InputNode NodeType = iota
	HiddenNode
	OutputNode
)

func (t NodeType) String() string {
	switch t {
	case InputNode:
		return "Input"
	case HiddenNode:
		return "Hidden"
	case OutputNode:
		return "Output"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// ParseNodeType is the inverse of NodeType.String.
func ParseNodeType(s string) (NodeType, error) {
	switch strings.TrimSpace(s) {
	case "Input":
		return InputNode, nil
	case "Hidden":
		return HiddenNode, nil
	case "Output":
		return OutputNode, nil
	}
	return 0, fmt.Errorf("unknown node type: %s", s)
}

// --------------------------- NodeGene ---------------------------

// NodeGene describes one neuron. It is a plain value; copying it copies the gene.
type NodeGene struct {
	ID         int // Unique within the genome, also the key in the compiled network.
	Type       NodeType
	Activation Activation
	Method     CalculationMethod
}

// NewNodeGene creates a node gene with the defaults for its type:
// inputs are Linear, outputs are Tanh and hidden nodes use hiddenAct.
func NewNodeGene(id int, typ NodeType, hiddenAct Activation) NodeGene {
	ng := NodeGene{ID: id, Type: typ, Method: LinearCombination}
	switch typ {
	case InputNode:
		ng.Activation = NewActivation(Linear)
	case OutputNode:
		ng.Activation = NewActivation(Tanh)
	default:
		ng.Activation = hiddenAct
	}
	return ng
}

// String returns a string representation of the NodeGene.
func (ng NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Type: %s, Activation: %s, Method: %s)",
		ng.ID, ng.Type, ng.Activation, ng.Method)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene is one directed weighted edge. Innovation aligns it with
// genes of other genomes of the same lineage.
type ConnectionGene struct {
	Innovation int
	In         int
	Out        int
	Weight     float64
	Expressed  bool
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Innovation: %d, %d->%d, Weight: %.3f, Expressed: %t)",
		cg.Innovation, cg.In, cg.Out, cg.Weight, cg.Expressed)
}

// Touches reports whether the connection has node id as either endpoint.
func (cg ConnectionGene) Touches(id int) bool {
	return cg.In == id || cg.Out == id
}

// Joins reports whether the connection links a and b in either direction.
func (cg ConnectionGene) Joins(a, b int) bool {
	return (cg.In == a && cg.Out == b) || (cg.In == b && cg.Out == a)
}
