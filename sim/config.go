package sim

import "fmt"

// WarehouseConfig groups the generated layout dimensions.
type WarehouseConfig struct {
	Width  int `yaml:"width"`  // columns (≥ 2)
	Height int `yaml:"height"` // rows (≥ 2)
}

// WorkloadConfig groups random order generation parameters.
type WorkloadConfig struct {
	OrderProbability float64 `yaml:"order_probability"` // per-tick chance of generating one order, in [0,1]
	MinItems         int     `yaml:"min_items"`         // ≥ 1
	MaxItems         int     `yaml:"max_items"`         // ≥ MinItems
}

// Config is the full configuration surface consumed by the simulator.
type Config struct {
	WarehouseConfig `yaml:",inline"`
	WorkloadConfig  `yaml:",inline"`

	NumWorkers   int         `yaml:"num_workers"`
	Steps        int         `yaml:"steps"`         // ticks executed by Run
	TickDuration int64       `yaml:"tick_duration"` // clock advance per tick (default 1)
	Seed         int64       `yaml:"seed"`
	StallPolicy  StallPolicy `yaml:"stall_policy"` // "fail" (default) or "stall"
}

// DefaultConfig mirrors the CLI defaults.
func DefaultConfig() Config {
	return Config{
		WarehouseConfig: WarehouseConfig{Width: 20, Height: 15},
		WorkloadConfig:  WorkloadConfig{OrderProbability: 0.1, MinItems: 1, MaxItems: 5},
		NumWorkers:      3,
		Steps:           100,
		TickDuration:    1,
		Seed:            42,
		StallPolicy:     StallPolicyFail,
	}
}

// Validate checks the non-layout parameters. Layout dimensions are validated by NewTopology.
func (c Config) Validate() error {
	switch {
	case c.NumWorkers < 1:
		return fmt.Errorf("%w: num_workers must be ≥ 1, got %d", ErrInvalidConfig, c.NumWorkers)
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must be ≥ 0, got %d", ErrInvalidConfig, c.Steps)
	case c.TickDuration < 1:
		return fmt.Errorf("%w: tick_duration must be ≥ 1, got %d", ErrInvalidConfig, c.TickDuration)
	case c.OrderProbability < 0 || c.OrderProbability > 1:
		return fmt.Errorf("%w: order_probability must be in [0,1], got %v", ErrInvalidConfig, c.OrderProbability)
	case c.MinItems < 1:
		return fmt.Errorf("%w: min_items must be ≥ 1, got %d", ErrInvalidConfig, c.MinItems)
	case c.MaxItems < c.MinItems:
		return fmt.Errorf("%w: max_items (%d) must be ≥ min_items (%d)", ErrInvalidConfig, c.MaxItems, c.MinItems)
	}
	if _, err := ParseStallPolicy(string(c.StallPolicy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
