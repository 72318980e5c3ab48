// Package neat provides a Go implementation of NEAT (NeuroEvolution of Augmenting Topologies)
// suited to artificial-life simulations, where every agent carries and mutates its own genome.
//
// A genome is a list of node genes and connection genes. Structure grows through mutation
// (new nodes split connections, new connections join nodes) and genomes of different agents
// can be recombined with Crossover. A genome is compiled into an evaluable network by the nn
// subpackage. Networks need not be acyclic: when evaluation stalls on a cycle, the blocked
// inputs become recurrent and read the value their source produced on the previous evaluation.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a genome and a brain around it
//	g, err := config.NewGenome()
//	if err != nil {
//		log.Fatalf("Error creating genome: %v", err)
//	}
//	brain, err := nn.NewBrain(g, slog.Default(), nn.OptionsFromConfig(&config.Network)...)
//	if err != nil {
//		log.Fatalf("Error building network: %v", err)
//	}
//
//	// Evaluate and evolve
//	rng := rand.New(rand.NewSource(1))
//	for i := 0; i < 100; i++ {
//		outputs, err := brain.Infer(sensors())
//		if err != nil {
//			log.Fatalf("Error evaluating: %v", err)
//		}
//		act(outputs)
//		if _, err := brain.Mutate(rng, config.Rates(), config.MutationOptions()); err != nil {
//			log.Fatalf("Error mutating: %v", err)
//		}
//	}
package neat
