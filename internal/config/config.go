package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Game        GameConfig        `mapstructure:"game"`
	Agent       AgentConfig       `mapstructure:"agent"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type GameConfig struct {
	PlayerColor  string        `mapstructure:"player_color"`
	ClockPreset  string        `mapstructure:"clock_preset"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// AgentConfig selects who plays the opponent. "builtin" runs the random
// agent in-process; "remote" waits for actions signed with a key from
// KeyFile.
type AgentConfig struct {
	Mode      string        `mapstructure:"mode"`
	Seed      int64         `mapstructure:"seed"`
	ThinkTime time.Duration `mapstructure:"think_time"`
	KeyFile   string        `mapstructure:"key_file"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type DevelopmentConfig struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	PrintBoard bool   `mapstructure:"print_board"`
}

const (
	AgentBuiltin = "builtin"
	AgentRemote  = "remote"
)

var ErrInvalidConfig = errors.New("invalid config")

// Load reads config.yaml from the working directory or ./config, then
// NANCHESS_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(".", "./config")
}

// LoadFrom is Load with explicit search paths.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variables
	v.SetEnvPrefix("NANCHESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("game.player_color", "white")
	v.SetDefault("game.clock_preset", "CLK_NONE")
	v.SetDefault("game.tick_interval", time.Second)
	v.SetDefault("agent.mode", AgentBuiltin)
	v.SetDefault("agent.seed", 0)
	v.SetDefault("agent.think_time", 500*time.Millisecond)
	v.SetDefault("agent.key_file", "")
	v.SetDefault("agent.token_ttl", 24*time.Hour)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
	v.SetDefault("development.print_board", false)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Agent.Mode {
	case AgentBuiltin:
	case AgentRemote:
		if c.Agent.KeyFile == "" {
			return fmt.Errorf("%w: agent.key_file is required in remote mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: agent.mode %q", ErrInvalidConfig, c.Agent.Mode)
	}
	if c.Game.TickInterval < 0 {
		return fmt.Errorf("%w: game.tick_interval %s", ErrInvalidConfig, c.Game.TickInterval)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
