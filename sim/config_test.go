package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 15, cfg.Height)
	assert.Equal(t, 3, cfg.NumWorkers)
	assert.Equal(t, 100, cfg.Steps)
	assert.Equal(t, 0.1, cfg.OrderProbability)
	assert.Equal(t, StallPolicyFail, cfg.StallPolicy)
}

func TestConfig_Validate_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"zero steps", func(c *Config) { c.Steps = 0 }, true},
		{"negative steps", func(c *Config) { c.Steps = -1 }, false},
		{"zero workers", func(c *Config) { c.NumWorkers = 0 }, false},
		{"zero tick duration", func(c *Config) { c.TickDuration = 0 }, false},
		{"probability zero", func(c *Config) { c.OrderProbability = 0 }, true},
		{"probability one", func(c *Config) { c.OrderProbability = 1 }, true},
		{"probability negative", func(c *Config) { c.OrderProbability = -0.1 }, false},
		{"min items zero", func(c *Config) { c.MinItems = 0 }, false},
		{"min equals max", func(c *Config) { c.MinItems, c.MaxItems = 3, 3 }, true},
		{"max below min", func(c *Config) { c.MinItems, c.MaxItems = 3, 2 }, false},
		{"empty stall policy", func(c *Config) { c.StallPolicy = "" }, true},
		{"unknown stall policy", func(c *Config) { c.StallPolicy = "retry" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestConfig_YAML_FlatKeys(t *testing.T) {
	// GIVEN a flat YAML document covering the embedded groups
	doc := `
width: 8
height: 6
order_probability: 0.25
min_items: 2
max_items: 4
num_workers: 2
steps: 40
tick_duration: 1
seed: 9
stall_policy: stall
`
	// WHEN it is decoded
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	// THEN the inline groups receive their keys
	assert.Equal(t, WarehouseConfig{Width: 8, Height: 6}, cfg.WarehouseConfig)
	assert.Equal(t, WorkloadConfig{OrderProbability: 0.25, MinItems: 2, MaxItems: 4}, cfg.WorkloadConfig)
	assert.Equal(t, StallPolicyStall, cfg.StallPolicy)
	assert.NoError(t, cfg.Validate())
}
