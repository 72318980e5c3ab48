package neat

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// DefaultMutateChance is the probability that a Mutate call does anything at all.
const DefaultMutateChance = 0.80

// MutationRates are the per-agent probabilities driving Mutate. They usually
// come from the agent's evolvable meta-genes.
type MutationRates struct {
	Amount      float64 // Scale of weight changes (base mutation rate).
	WeightProb  float64
	NeuroProb   float64
	BiasProb    float64
	DropoutProb float64
}

// MutationOptions are the engine-wide knobs of Mutate.
type MutationOptions struct {
	MutateChance          float64
	Seed                  SeedConnection
	AddConnectionAttempts int
}

// DefaultMutationOptions returns the options used when none are configured.
func DefaultMutationOptions() MutationOptions {
	return MutationOptions{
		MutateChance:          DefaultMutateChance,
		AddConnectionAttempts: DefaultAddConnectionAttempts,
	}
}

// mutationLog collects "operator:detail" entries for the debug log.
type mutationLog struct {
	entries []string
}

func (l *mutationLog) add(op, format string, args ...any) {
	l.entries = append(l.entries, op+":"+fmt.Sprintf(format, args...))
}

func (l *mutationLog) String() string {
	return strings.Join(l.entries, "; ")
}

// Mutate applies one round of mutation to g and returns a human readable log
// of what fired. The log format is meant for display only.
//
// Steps, each with independent rolls from rng:
//   - with probability 1-MutateChance nothing happens;
//   - NeuroProb gates AddNodeMutation and, separately, ChangeActivationMutation;
//   - BiasProb gates ChangeCalculationMethodMutation;
//   - up to 3*NeuroProb AddConnectionMutation attempts, each gated by WeightProb;
//   - every connection has WeightProb chance to have its weight perturbed (75%)
//     or replaced (25%) by Uniform(-2*Amount, 2*Amount);
//   - DropoutProb gates one InvertConnectionMutation.
func Mutate(g *Genome, rng *rand.Rand, rates MutationRates, opts MutationOptions) string {
	log := &mutationLog{}
	if rng.Float64() >= opts.MutateChance {
		return "skipped"
	}

	if rng.Float64() < rates.NeuroProb {
		before := len(g.nodes)
		if g.AddNodeMutation(rng) {
			log.add("AddNode", "nodes %d->%d", before, len(g.nodes))
		} else {
			log.add("AddNode", "failed")
		}
	}
	if rng.Float64() < rates.NeuroProb {
		snapshot := activationsOf(g)
		if g.ChangeActivationMutation(rng) {
			if id, before, after := changedActivation(g, snapshot); id >= 0 {
				log.add("ChangeActivation", "node %d %s->%s", id, before, after)
			} else {
				log.add("ChangeActivation", "unchanged")
			}
		} else {
			log.add("ChangeActivation", "output node skipped")
		}
	}

	if rng.Float64() < rates.BiasProb {
		snapshot := methodsOf(g)
		if g.ChangeCalculationMethodMutation(rng) {
			if id, before, after := changedMethod(g, snapshot); id >= 0 {
				log.add("ChangeCalculationMethod", "node %d %s->%s", id, before, after)
			} else {
				log.add("ChangeCalculationMethod", "unchanged")
			}
		} else {
			log.add("ChangeCalculationMethod", "failed")
		}
	}

	// Connection adding is gated by WeightProb, not NeuroProb.
	for i := 0; float64(i) < 3*rates.NeuroProb; i++ {
		if rng.Float64() >= rates.WeightProb {
			continue
		}
		before := len(g.conns)
		if g.AddConnectionMutation(rng, opts.Seed, opts.AddConnectionAttempts) {
			c := g.conns[len(g.conns)-1]
			log.add("AddConnection", "%d->%d w=%s (connections %d->%d)", c.In, c.Out, formatWeight(c.Weight), before, len(g.conns))
		} else {
			log.add("AddConnection", "failed")
		}
	}

	span := 2 * rates.Amount
	for i := range g.conns {
		if rng.Float64() >= rates.WeightProb {
			continue
		}
		before := g.conns[i].Weight
		if rng.Float64() < 0.75 {
			g.conns[i].Weight += uniform(rng, -span, span)
		} else {
			g.conns[i].Weight = uniform(rng, -span, span)
		}
		log.add("Weight", "innovation %d %s->%s", g.conns[i].Innovation, formatWeight(before), formatWeight(g.conns[i].Weight))
	}

	if rng.Float64() < rates.DropoutProb {
		if g.InvertConnectionMutation(rng) {
			log.add("InvertConnection", "toggled")
		} else {
			log.add("InvertConnection", "failed")
		}
	}

	if len(log.entries) == 0 {
		return "none"
	}
	return log.String()
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 3, 64)
}

func activationsOf(g *Genome) []Activation {
	out := make([]Activation, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Activation
	}
	return out
}

func changedActivation(g *Genome, before []Activation) (int, Activation, Activation) {
	for i, n := range g.nodes {
		if n.Activation != before[i] {
			return n.ID, before[i], n.Activation
		}
	}
	return -1, Activation{}, Activation{}
}

func methodsOf(g *Genome) []CalculationMethod {
	out := make([]CalculationMethod, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Method
	}
	return out
}

func changedMethod(g *Genome, before []CalculationMethod) (int, CalculationMethod, CalculationMethod) {
	for i, n := range g.nodes {
		if n.Method != before[i] {
			return n.ID, before[i], n.Method
		}
	}
	return -1, LinearCombination, LinearCombination
}
