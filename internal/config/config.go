// Package config loads fortress.cfg.json and FORTRESS_* environment
// overrides into a typed Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
	"github.com/Garsondee/Fortress-Command/internal/game"
)

// FileName is the config file looked up in the config directory.
const FileName = "fortress.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. FORTRESS_LLM_APIKEY.
const EnvPrefix = "FORTRESS"

type WorldConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Seed   int64   `mapstructure:"seed"`
}

type FortressConfig struct {
	HP        float64 `mapstructure:"hp"`
	Radius    float64 `mapstructure:"radius"`
	APMax     float64 `mapstructure:"apMax"`
	APRegen   float64 `mapstructure:"apRegen"`
	InitialAP float64 `mapstructure:"initialAp"`
}

type BridgeConfig struct {
	ReportInterval  float64 `mapstructure:"reportInterval"`
	CommandInterval float64 `mapstructure:"commandInterval"`
	HistoryRounds   int     `mapstructure:"historyRounds"`
	Side            string  `mapstructure:"side"`
}

type LLMConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SimConfig struct {
	// Speed multiplies game time per frame.
	Speed float64 `mapstructure:"speed"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel string         `mapstructure:"logLevel"`
	LogFile  string         `mapstructure:"logFile"`
	Level    string         `mapstructure:"level"`
	World    WorldConfig    `mapstructure:"world"`
	Fortress FortressConfig `mapstructure:"fortress"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Sim      SimConfig      `mapstructure:"sim"`
}

func setDefaults(v *viper.Viper) {
	wc := game.DefaultWorldConfig()
	bc := bridge.DefaultConfig()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("level", "")

	v.SetDefault("world.width", wc.Width)
	v.SetDefault("world.height", wc.Height)
	v.SetDefault("world.seed", wc.Seed)

	v.SetDefault("fortress.hp", wc.FortressHP)
	v.SetDefault("fortress.radius", wc.FortressRadius)
	v.SetDefault("fortress.apMax", wc.APMax)
	v.SetDefault("fortress.apRegen", wc.APRegen)
	v.SetDefault("fortress.initialAp", wc.InitialAP)

	v.SetDefault("bridge.reportInterval", bc.ReportInterval)
	v.SetDefault("bridge.commandInterval", bc.CommandInterval)
	v.SetDefault("bridge.historyRounds", bc.HistoryRounds)
	v.SetDefault("bridge.side", "red")

	v.SetDefault("llm.endpoint", "https://api.deepseek.com/chat/completions")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("sim.speed", 1.0)
}

// Load reads FileName from configDir. A missing file leaves every key at its
// default; a file that exists but does not parse is an error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.Fortress.HP <= 0 || c.Fortress.APMax <= 0 {
		return fmt.Errorf("fortress hp and apMax must be positive")
	}
	if c.Bridge.ReportInterval <= 0 || c.Bridge.CommandInterval <= 0 {
		return fmt.Errorf("bridge intervals must be positive")
	}
	if _, ok := game.ParseSide(c.Bridge.Side); !ok {
		return fmt.Errorf("bridge.side: unknown side %q", c.Bridge.Side)
	}
	if c.Sim.Speed <= 0 {
		return fmt.Errorf("sim.speed must be positive, got %g", c.Sim.Speed)
	}
	return nil
}

// GameWorld converts the world and fortress sections.
func (c *Config) GameWorld() game.WorldConfig {
	return game.WorldConfig{
		Width:          c.World.Width,
		Height:         c.World.Height,
		FortressHP:     c.Fortress.HP,
		FortressRadius: c.Fortress.Radius,
		APMax:          c.Fortress.APMax,
		APRegen:        c.Fortress.APRegen,
		InitialAP:      c.Fortress.InitialAP,
		Seed:           c.World.Seed,
	}
}

// BridgeSettings converts the bridge section.
func (c *Config) BridgeSettings() bridge.Config {
	return bridge.Config{
		ReportInterval:  c.Bridge.ReportInterval,
		CommandInterval: c.Bridge.CommandInterval,
		HistoryRounds:   c.Bridge.HistoryRounds,
	}
}

// AISide is the side the bridge commands.
func (c *Config) AISide() game.Side {
	s, _ := game.ParseSide(c.Bridge.Side)
	return s
}

// LLMEnabled reports whether an API key was supplied.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
