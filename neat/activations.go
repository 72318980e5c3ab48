package neat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ActivationKind identifies one of the supported activation functions.
type ActivationKind int

const (
	Linear ActivationKind = iota
	Relu
	LeakyRelu
	Tanh
	Sigmoid
	Abs
	Softmax
)

// DefaultLeakyAlpha is the slope used for negative inputs of LeakyRelu when none is given.
const DefaultLeakyAlpha = 0.01

// Activation is an activation function together with its parameter.
// Alpha is only meaningful for LeakyRelu.
type Activation struct {
	Kind  ActivationKind
	Alpha float64
}

var activationNames = map[ActivationKind]string{
	Linear:    "Linear",
	Relu:      "Relu",
	LeakyRelu: "LeakyRelu",
	Tanh:      "Tanh",
	Sigmoid:   "Sigmoid",
	Abs:       "Abs",
	Softmax:   "Softmax",
}

// MutableActivations is the pool ChangeActivationMutation draws from.
// Softmax is deliberately absent.
var MutableActivations = []ActivationKind{Sigmoid, Tanh, Linear, Relu, Abs}

// NewActivation returns the activation for kind, filling in the default LeakyRelu slope.
func NewActivation(kind ActivationKind) Activation {
	if kind == LeakyRelu {
		return Activation{Kind: LeakyRelu, Alpha: DefaultLeakyAlpha}
	}
	return Activation{Kind: kind}
}

// Apply evaluates the activation function at x.
func (a Activation) Apply(x float64) float64 {
	switch a.Kind {
	case Relu:
		return math.Max(0, x)
	case LeakyRelu:
		if x > 0 {
			return x
		}
		return a.Alpha * x
	case Tanh:
		return math.Tanh(x)
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case Abs:
		return math.Abs(x)
	case Softmax:
		// A lone neuron is normalised against an implicit zero logit.
		return math.Exp(x) / (math.Exp(x) + 1.0)
	default:
		return x
	}
}

// String returns the persisted name, e.g. "Tanh" or "LeakyRelu(0.01)".
func (a Activation) String() string {
	name, ok := activationNames[a.Kind]
	if !ok {
		return fmt.Sprintf("Activation(%d)", int(a.Kind))
	}
	if a.Kind == LeakyRelu {
		return name + "(" + strconv.FormatFloat(a.Alpha, 'g', -1, 64) + ")"
	}
	return name
}

// ParseActivation is the inverse of Activation.String.
// A bare "LeakyRelu" gets the default slope.
func ParseActivation(s string) (Activation, error) {
	s = strings.TrimSpace(s)
	name, param, hasParam := strings.Cut(s, "(")
	for kind, n := range activationNames {
		if !strings.EqualFold(n, name) {
			continue
		}
		if !hasParam {
			return NewActivation(kind), nil
		}
		if kind != LeakyRelu || !strings.HasSuffix(param, ")") {
			return Activation{}, fmt.Errorf("unexpected parameter in activation %q", s)
		}
		alpha, err := strconv.ParseFloat(strings.TrimSuffix(param, ")"), 64)
		if err != nil {
			return Activation{}, fmt.Errorf("invalid LeakyRelu slope in %q: %w", s, err)
		}
		return Activation{Kind: LeakyRelu, Alpha: alpha}, nil
	}
	return Activation{}, fmt.Errorf("unknown activation function: %s", s)
}
