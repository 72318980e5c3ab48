package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the engine configuration.
type Config struct {
	Genome        GenomeConfig
	Mutation      MutationConfig
	Network       NetworkConfig
	Compatibility CompatibilityConfig
}

// GenomeConfig holds the shape of freshly created genomes.
type GenomeConfig struct {
	NumInputs        int    `ini:"num_inputs"`
	NumOutputs       int    `ini:"num_outputs"`
	HiddenActivation string `ini:"hidden_activation"` // Default: 'Linear'
}

// MutationConfig holds the defaults and engine-wide knobs of Mutate. The
// probabilities are only defaults; agents normally carry their own.
type MutationConfig struct {
	MutateChance          float64 `ini:"mutate_chance"` // Default: 0.8
	MutationAmount        float64 `ini:"mutation_amount"`
	WeightMutationProb    float64 `ini:"weight_mutation_prob"`
	NeuroMutationProb     float64 `ini:"neuro_mutation_prob"`
	BiasMutationProb      float64 `ini:"bias_mutation_prob"`
	DropoutProb           float64 `ini:"dropout_prob"`
	AddConnectionAttempts int     `ini:"add_connection_attempts"` // Default: 20
	SeedConnectionNode    int     `ini:"seed_connection_node"`
	SeedConnectionProb    float64 `ini:"seed_connection_prob"` // 0 disables the seeding bias
}

// NetworkConfig holds parameters of compiled networks.
type NetworkConfig struct {
	AllowRecurrence bool `ini:"allow_recurrence"` // Default: true
	StallFactor     int  `ini:"stall_factor"`     // Default: 2
	RebuildWorkers  int  `ini:"rebuild_workers"`  // Default: 1
}

// CompatibilityConfig holds the speciation coefficients.
type CompatibilityConfig struct {
	ExcessCoefficient   float64 `ini:"excess_coefficient"`
	DisjointCoefficient float64 `ini:"disjoint_coefficient"`
	WeightCoefficient   float64 `ini:"weight_coefficient"`
	Threshold           float64 `ini:"threshold"`
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	config, err := LoadConfigSource(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// LoadConfigSource loads configuration from any source accepted by ini.Load
// (file name, []byte, io.Reader).
func LoadConfigSource(source any) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Network").MapTo(&config.Network); err != nil {
		return nil, fmt.Errorf("failed to map [Network] section: %w", err)
	}
	if err := cfg.Section("Compatibility").MapTo(&config.Compatibility); err != nil {
		return nil, fmt.Errorf("failed to map [Compatibility] section: %w", err)
	}

	config.Genome.HiddenActivation = cleanIniString(config.Genome.HiddenActivation)
	if config.Genome.HiddenActivation == "" {
		config.Genome.HiddenActivation = "Linear"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns the configuration used for keys an INI file omits.
func DefaultConfig() *Config {
	return &Config{
		Genome: GenomeConfig{
			HiddenActivation: "Linear",
		},
		Mutation: MutationConfig{
			MutateChance:          DefaultMutateChance,
			MutationAmount:        0.5,
			WeightMutationProb:    0.1,
			NeuroMutationProb:     0.1,
			BiasMutationProb:      0.1,
			DropoutProb:           0.05,
			AddConnectionAttempts: DefaultAddConnectionAttempts,
		},
		Network: NetworkConfig{
			AllowRecurrence: true,
			StallFactor:     2,
			RebuildWorkers:  1,
		},
		Compatibility: CompatibilityConfig{
			ExcessCoefficient:   1.0,
			DisjointCoefficient: 1.0,
			WeightCoefficient:   0.4,
			Threshold:           3.0,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if _, err := ParseActivation(c.Genome.HiddenActivation); err != nil {
		return fmt.Errorf("config error: hidden_activation: %w", err)
	}

	probs := map[string]float64{
		"mutate_chance":        c.Mutation.MutateChance,
		"weight_mutation_prob": c.Mutation.WeightMutationProb,
		"neuro_mutation_prob":  c.Mutation.NeuroMutationProb,
		"bias_mutation_prob":   c.Mutation.BiasMutationProb,
		"dropout_prob":         c.Mutation.DropoutProb,
		"seed_connection_prob": c.Mutation.SeedConnectionProb,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if c.Mutation.MutationAmount < 0 {
		return fmt.Errorf("config error: mutation_amount cannot be negative")
	}
	if c.Mutation.AddConnectionAttempts <= 0 {
		return fmt.Errorf("config error: add_connection_attempts must be positive")
	}
	if c.Network.StallFactor <= 0 {
		return fmt.Errorf("config error: stall_factor must be positive")
	}
	if c.Network.RebuildWorkers <= 0 {
		return fmt.Errorf("config error: rebuild_workers must be positive")
	}
	if c.Compatibility.ExcessCoefficient < 0 || c.Compatibility.DisjointCoefficient < 0 || c.Compatibility.WeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	}
	if c.Compatibility.Threshold < 0 {
		return fmt.Errorf("config error: compatibility threshold cannot be negative")
	}
	return nil
}

// Rates returns the configured default mutation rates.
func (c *Config) Rates() MutationRates {
	return MutationRates{
		Amount:      c.Mutation.MutationAmount,
		WeightProb:  c.Mutation.WeightMutationProb,
		NeuroProb:   c.Mutation.NeuroMutationProb,
		BiasProb:    c.Mutation.BiasMutationProb,
		DropoutProb: c.Mutation.DropoutProb,
	}
}

// MutationOptions returns the engine-wide Mutate options.
func (c *Config) MutationOptions() MutationOptions {
	return MutationOptions{
		MutateChance:          c.Mutation.MutateChance,
		Seed:                  SeedConnection{NodeID: c.Mutation.SeedConnectionNode, Prob: c.Mutation.SeedConnectionProb},
		AddConnectionAttempts: c.Mutation.AddConnectionAttempts,
	}
}

// NewGenome creates a fresh genome shaped by the config.
func (c *Config) NewGenome() (*Genome, error) {
	act, err := ParseActivation(c.Genome.HiddenActivation)
	if err != nil {
		return nil, fmt.Errorf("config error: hidden_activation: %w", err)
	}
	g, err := NewGenome(c.Genome.NumInputs, c.Genome.NumOutputs)
	if err != nil {
		return nil, err
	}
	g.HiddenActivation = act
	return g, nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
