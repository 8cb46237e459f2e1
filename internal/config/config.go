// Package config loads the server configuration from a yaml file with
// environment overrides (prefix COSMIC, dots replaced by underscores).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
}

// ServerConfig covers the websocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig overrides the base-game rule numbers.
type GameConfig struct {
	HandSize             int           `mapstructure:"hand_size"`
	PlanetsPerPlayer     int           `mapstructure:"planets_per_player"`
	ShipsPerPlanet       int           `mapstructure:"ships_per_planet"`
	ForeignColoniesToWin int           `mapstructure:"foreign_colonies_to_win"`
	HomeColoniesForPower int           `mapstructure:"home_colonies_for_power"`
	MaxShipsInGate       int           `mapstructure:"max_ships_in_gate"`
	MaxAllyShips         int           `mapstructure:"max_ally_ships"`
	DealTimer            time.Duration `mapstructure:"deal_timer"`
}

// Rules converts the configured numbers into engine rules.
func (g GameConfig) Rules() state.Rules {
	return state.Rules{
		HandSize:             g.HandSize,
		PlanetsPerPlayer:     g.PlanetsPerPlayer,
		ShipsPerPlanet:       g.ShipsPerPlanet,
		ForeignColoniesToWin: g.ForeignColoniesToWin,
		HomeColoniesForPower: g.HomeColoniesForPower,
		MaxShipsInGate:       g.MaxShipsInGate,
		MaxAllyShips:         g.MaxAllyShips,
		DealTimer:            g.DealTimer,
	}
}

// Load reads the configuration file at path. A missing file is not an error;
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("COSMIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			// No file at the path: defaults and environment still apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := state.DefaultRules()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.hand_size", defaults.HandSize)
	v.SetDefault("game.planets_per_player", defaults.PlanetsPerPlayer)
	v.SetDefault("game.ships_per_planet", defaults.ShipsPerPlanet)
	v.SetDefault("game.foreign_colonies_to_win", defaults.ForeignColoniesToWin)
	v.SetDefault("game.home_colonies_for_power", defaults.HomeColoniesForPower)
	v.SetDefault("game.max_ships_in_gate", defaults.MaxShipsInGate)
	v.SetDefault("game.max_ally_ships", defaults.MaxAllyShips)
	v.SetDefault("game.deal_timer", defaults.DealTimer)
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if c.Game.PlanetsPerPlayer < 1 || c.Game.ShipsPerPlanet < 1 {
		return fmt.Errorf("game rules must keep at least one planet and one ship per planet")
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("hand size must be positive")
	}
	return nil
}
