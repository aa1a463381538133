package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/spectrum-sim/model"
)

// LogConfig holds logger settings.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// SimConfig holds run-loop and engine settings.
type SimConfig struct {
	TickMs            int     `mapstructure:"tick_ms"`
	Seed              int64   `mapstructure:"seed"`
	Accelerated       bool    `mapstructure:"accelerated"`
	PropagationModel  string  `mapstructure:"propagation_model"`
	ConfusionPattern  string  `mapstructure:"confusion_pattern"`
	JammedDurationSec float64 `mapstructure:"jammed_duration_sec"`
}

// WorldConfig holds terrain extents.
type WorldConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// ServerConfig holds the command/metrics listen address.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// Config is the full simulator configuration, read from a JSON file with
// defaults for every key so the simulator runs without one.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Sim    SimConfig    `mapstructure:"sim"`
	World  WorldConfig  `mapstructure:"world"`
	Server ServerConfig `mapstructure:"server"`

	ScenarioPath    string `mapstructure:"scenario_path"`
	RadioTablesPath string `mapstructure:"radio_tables_path"`
}

// Load reads configuration from the given JSON file. An empty path loads
// pure defaults; a missing file at a non-empty path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("sim.tick_ms", 100)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.accelerated", false)
	v.SetDefault("sim.propagation_model", "FSPL")
	v.SetDefault("sim.confusion_pattern", "random")
	v.SetDefault("sim.jammed_duration_sec", 10.0)

	v.SetDefault("world.width", 10000.0)
	v.SetDefault("world.height", 10000.0)

	v.SetDefault("server.listen", ":8080")

	v.SetDefault("scenario_path", "")
	v.SetDefault("radio_tables_path", "")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// RadioConfig materializes the engine's radio configuration: built-in tables
// optionally overridden by a tables file, plus the selector/extents/duration
// settings from this config.
func (c *Config) RadioConfig() (*model.RadioConfig, error) {
	rc := model.DefaultRadioConfig()

	if c.RadioTablesPath != "" {
		data, err := os.ReadFile(c.RadioTablesPath)
		if err != nil {
			return nil, fmt.Errorf("read radio tables: %w", err)
		}
		if err := json.Unmarshal(data, rc); err != nil {
			return nil, fmt.Errorf("parse radio tables: %w", err)
		}
	}

	pm, err := model.ParsePropagationModel(c.Sim.PropagationModel)
	if err != nil {
		return nil, err
	}
	rc.Model = pm

	cp, err := model.ParseConfusionPattern(c.Sim.ConfusionPattern)
	if err != nil {
		return nil, err
	}
	rc.Confusion = cp

	if c.Sim.JammedDurationSec > 0 {
		rc.JammedDurationSec = c.Sim.JammedDurationSec
	}
	if c.World.Width > 0 {
		rc.World.Width = c.World.Width
	}
	if c.World.Height > 0 {
		rc.World.Height = c.World.Height
	}
	return rc, nil
}
