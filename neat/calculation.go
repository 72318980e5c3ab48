package neat

import (
	"fmt"
	"strings"
)

// CalculationMethod decides how a neuron's weighted sum becomes its output.
type CalculationMethod int

const (
	// LinearCombination applies the activation to the weighted sum.
	LinearCombination CalculationMethod = iota
	// Latch is a sticky one-bit comparator over the activated sum.
	Latch
)

// LatchThreshold is the activated value at or above which a Latch switches on.
const LatchThreshold = 0.80

// CalculationMethods lists every method, in the order mutation draws from.
var CalculationMethods = []CalculationMethod{LinearCombination, Latch}

// Calculate turns sum into an output. state is the neuron's previous output and
// only matters for Latch, whose result is also its next state.
func (m CalculationMethod) Calculate(sum float64, act Activation, state float64) float64 {
	a := act.Apply(sum)
	if m != Latch {
		return a
	}
	if (state == 1 && a > 0) || a >= LatchThreshold {
		return 1
	}
	return 0
}

func (m CalculationMethod) String() string {
	switch m {
	case LinearCombination:
		return "LinearCombination"
	case Latch:
		return "Latch"
	}
	return fmt.Sprintf("CalculationMethod(%d)", int(m))
}

// ParseCalculationMethod is the inverse of CalculationMethod.String.
func ParseCalculationMethod(s string) (CalculationMethod, error) {
	switch strings.TrimSpace(s) {
	case "LinearCombination":
		return LinearCombination, nil
	case "Latch":
		return Latch, nil
	}
	return 0, fmt.Errorf("unknown calculation method: %s", s)
}
