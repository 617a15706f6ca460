package state

import (
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{Id: "a"}
	_ = cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Id: "a"}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, ModeActive, cfg.Mode)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultGroup, cfg.Group)
	assert.Equal(t, DefaultCapacity, cfg.Capacity)
	assert.Equal(t, HelloInterval, cfg.HelloInterval)
	assert.Equal(t, ResponseWindow, cfg.ResponseWindow)
	assert.Equal(t, DedupDropNew, cfg.DedupPolicy)
	assert.Zero(t, cfg.HoldTime)
	assert.Zero(t, cfg.TopologyHoldTime)

	require.NoError(t, ConfigValidator(&cfg))
}

func TestApplyDefaultsHostnameFallback(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.ApplyDefaults())
	assert.NotEmpty(t, cfg.Id)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Id:            "a",
		Mode:          ModePassive,
		Port:          6000,
		Capacity:      250,
		HelloInterval: time.Second,
	}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, ModePassive, cfg.Mode)
	assert.Equal(t, uint16(6000), cfg.Port)
	assert.Equal(t, 250, cfg.Capacity)
	assert.Equal(t, time.Second, cfg.HelloInterval)
}

func TestConfigValidator(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"bad id", func(cfg *Config) { cfg.Id = "no spaces allowed" }},
		{"bad mode", func(cfg *Config) { cfg.Mode = "hybrid" }},
		{"zero port", func(cfg *Config) { cfg.Port = 0 }},
		{"unparseable group", func(cfg *Config) { cfg.Group = "not-an-address" }},
		{"unicast group", func(cfg *Config) { cfg.Group = "192.168.1.1" }},
		{"negative capacity", func(cfg *Config) { cfg.Capacity = -1 }},
		{"zero hello interval", func(cfg *Config) { cfg.HelloInterval = 0 }},
		{"zero response window", func(cfg *Config) { cfg.ResponseWindow = 0 }},
		{"negative hold time", func(cfg *Config) { cfg.HoldTime = -time.Second }},
		{"negative topology hold time", func(cfg *Config) { cfg.TopologyHoldTime = -time.Second }},
		{"bad dedup policy", func(cfg *Config) { cfg.DedupPolicy = "lru" }},
		{"zero dedup capacity", func(cfg *Config) { cfg.DedupCapacity = 0 }},
		{"zero max neighbors", func(cfg *Config) { cfg.MaxNeighbors = 0 }},
		{"zero max routers", func(cfg *Config) { cfg.MaxRouters = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, ConfigValidator(&cfg))
		})
	}
}

func TestGroupAddr(t *testing.T) {
	cfg := validConfig()
	addr, err := cfg.GroupAddr()
	require.NoError(t, err)
	assert.Equal(t, "224.0.0.5:5000", addr.String())
}

func TestConfigYamlRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = ModePassive
	cfg.HoldTime = 15 * time.Second

	out, err := yaml.Marshal(&cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg, back)
}

func TestNameValidator(t *testing.T) {
	assert.NoError(t, NameValidator("printer-4.lab_01"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("has space"))
	assert.Error(t, NameValidator("sneaky/slash"))
}
