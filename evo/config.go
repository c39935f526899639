package evo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config gathers everything needed to set up and drive a run.
type Config struct {
	Pool         PoolConfig   `yaml:"pool"`
	Ratios       Ratios       `yaml:"ratios"`
	NeatBreeder  NeatBreeder  `yaml:"neat_breeder"`
	FloatBreeder FloatBreeder `yaml:"float_breeder"`
	VecBreeder   VecBreeder   `yaml:"vec_breeder"`
	Run          RunConfig    `yaml:"run"`
	Stats        StatsConfig  `yaml:"stats"`
}

// RunConfig holds the stopping criteria of Pool.Run and process settings.
type RunConfig struct {
	MaxGenerations            int    `ini:"max_generations" yaml:"max_generations"`
	MaxGensWithoutImprovement int    `ini:"max_gens_without_improvement" yaml:"max_gens_without_improvement"`
	Seed                      int64  `ini:"seed" yaml:"seed"`           // 0 seeds from the clock.
	LogLevel                  string `ini:"log_level" yaml:"log_level"` // debug, info, warn or error.
}

// Level parses LogLevel. An empty level means info.
func (c RunConfig) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Rand returns the random source described by Seed.
func (c RunConfig) Rand() *Rand {
	if c.Seed == 0 {
		return NewRandFromTime()
	}
	return NewRand(c.Seed)
}

// StatsConfig selects where generation history goes.
type StatsConfig struct {
	Store       string `ini:"store" yaml:"store"`               // none, memory or sqlite.
	Path        string `ini:"path" yaml:"path"`                 // Database file for the sqlite store.
	PlotPath    string `ini:"plot_path" yaml:"plot_path"`       // Empty disables the fitness plot.
	MetricsAddr string `ini:"metrics_addr" yaml:"metrics_addr"` // Empty disables the Prometheus endpoint.
}

// DefaultConfig returns the configuration used for any key a file omits.
func DefaultConfig() *Config {
	return &Config{
		Pool:         DefaultPoolConfig(100),
		Ratios:       DefaultRatios(),
		NeatBreeder:  DefaultNeatBreeder(),
		FloatBreeder: DefaultFloatBreeder(),
		VecBreeder:   DefaultVecBreeder(),
		Run: RunConfig{
			MaxGenerations:            100,
			MaxGensWithoutImprovement: 20,
			LogLevel:                  "info",
		},
		Stats: StatsConfig{Store: "memory"},
	}
}

// LoadConfig reads an INI file, or a YAML file when the extension is .yaml
// or .yml. Keys missing from the file keep their DefaultConfig value.
func LoadConfig(filePath string) (*Config, error) {
	var (
		config *Config
		err    error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		config, err = loadYAML(filePath)
	default:
		config, err = loadINI(filePath)
	}
	if err != nil {
		return nil, err
	}

	config.Ratios = config.Ratios.Normalize()
	config.Stats.Store = strings.ToLower(strings.TrimSpace(config.Stats.Store))
	config.Run.LogLevel = strings.TrimSpace(config.Run.LogLevel)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadINI(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	sections := []struct {
		name   string
		target any
	}{
		{"Pool", &config.Pool},
		{"Ratios", &config.Ratios},
		{"NeatBreeder", &config.NeatBreeder},
		{"FloatBreeder", &config.FloatBreeder},
		{"VecBreeder", &config.VecBreeder},
		{"Run", &config.Run},
		{"Stats", &config.Stats},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	// MatchPolicy is a named enum, read by hand.
	if key, err := cfg.Section("Pool").GetKey("match_policy"); err == nil {
		m, err := ParseMatchPolicy(key.String())
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		config.Pool.MatchPolicy = m
	}
	return config, nil
}

func loadYAML(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	return config, nil
}

// UnmarshalYAML reads a match policy by name.
func (m *MatchPolicy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseMatchPolicy(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if err := c.Ratios.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	nb := c.NeatBreeder
	if nb.Inputs <= 0 {
		return fmt.Errorf("config error: inputs must be positive")
	}
	if nb.Outputs <= 0 {
		return fmt.Errorf("config error: outputs must be positive")
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"mutate_add_connection", nb.MutateAddConnection},
		{"mutate_add_neuron", nb.MutateAddNeuron},
		{"mutate_connection_weight", nb.MutateConnectionWeight},
		{"mutate_toggle_expression", nb.MutateToggleExpression},
		{"mutate_bias", nb.MutateBias},
		{"perturb_probability", nb.PerturbProbability},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if nb.DisjointCoefficient < 0 {
		return fmt.Errorf("config error: disjoint_coefficient cannot be negative")
	}
	if nb.WeightCoefficient < 0 {
		return fmt.Errorf("config error: weight_coefficient cannot be negative")
	}
	if nb.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if nb.RandomMutations < 0 {
		return fmt.Errorf("config error: random_mutations cannot be negative")
	}

	fb := c.FloatBreeder
	if fb.Max < fb.Min {
		return fmt.Errorf("config error: float max cannot be less than min")
	}
	if fb.Delta < 0 {
		return fmt.Errorf("config error: float delta cannot be negative")
	}

	vb := c.VecBreeder
	if vb.Size <= 0 {
		return fmt.Errorf("config error: vec size must be positive")
	}
	if vb.Max <= vb.Min {
		return fmt.Errorf("config error: vec max must be greater than min")
	}
	if vb.Delta < 0 || vb.MutateRate < 0 || vb.FlipRate < 0 {
		return fmt.Errorf("config error: vec delta, mutate_rate and flip_rate cannot be negative")
	}

	if c.Run.MaxGenerations <= 0 {
		return fmt.Errorf("config error: max_generations must be positive")
	}
	if c.Run.MaxGensWithoutImprovement <= 0 {
		return fmt.Errorf("config error: max_gens_without_improvement must be positive")
	}
	if _, err := c.Run.Level(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.Stats.Store {
	case "", "none", "memory":
	case "sqlite":
		if c.Stats.Path == "" {
			return fmt.Errorf("config error: sqlite store needs a path")
		}
	default:
		return fmt.Errorf("config error: invalid store '%s', must be one of 'none', 'memory', 'sqlite'", c.Stats.Store)
	}
	return nil
}
