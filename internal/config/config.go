// Package config loads the arena runner configuration from defaults, a YAML
// file, ARENA_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zeusync/arena/internal/arena"
	"github.com/zeusync/arena/internal/core/observability/log"
)

const EnvPrefix = "ARENA"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Log     LogConfig      `mapstructure:"log"`
	Arena   arena.Settings `mapstructure:"arena"`
	Blue    string         `mapstructure:"blue"`
	Red     string         `mapstructure:"red"`
	Matches int            `mapstructure:"matches"`
	// Parallelism bounds concurrently running matches.
	Parallelism int `mapstructure:"parallelism"`
	// Definitions is a YAML file replacing the embedded behavior definitions.
	Definitions string        `mapstructure:"definitions"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string `mapstructure:"addr"`
}

func Default() Config {
	return Config{
		Log:         LogConfig{Level: "info"},
		Arena:       arena.DefaultSettings(),
		Blue:        string(arena.PolicyFSM),
		Red:         string(arena.PolicyBT),
		Matches:     1,
		Parallelism: 4,
	}
}

// Validate checks every field that the runner cannot default.
func (c Config) Validate() error {
	if err := c.Arena.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "arena: %v", err)
	}
	if _, err := c.Policies(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "policy: %v", err)
	}
	if c.Matches <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "matches %d", c.Matches)
	}
	if c.Parallelism <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "parallelism %d", c.Parallelism)
	}
	return nil
}

// Policies returns the blue and red policies.
func (c Config) Policies() ([2]arena.Policy, error) {
	var out [2]arena.Policy
	for i, name := range [...]string{c.Blue, c.Red} {
		p, err := arena.ParsePolicy(name)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

func (c Config) LogLevel() log.Level { return log.ParseLevel(c.Log.Level) }

// flagKeys maps flag names onto configuration keys.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"blue":           "blue",
	"red":            "red",
	"matches":        "matches",
	"parallelism":    "parallelism",
	"definitions":    "definitions",
	"metrics-addr":   "metrics.addr",
	"frames":         "arena.frames",
	"seed":           "arena.seed",
	"team-size":      "arena.team_size",
	"respawn-frames": "arena.respawn_frames",
}

// RegisterFlags adds the runner flags to fs with defaults from Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error or silent")
	fs.String("blue", d.Blue, "policy of the blue team: fsm, bt or utility")
	fs.String("red", d.Red, "policy of the red team: fsm, bt or utility")
	fs.Int("matches", d.Matches, "number of matches to play")
	fs.Int("parallelism", d.Parallelism, "matches played concurrently")
	fs.String("definitions", d.Definitions, "YAML behavior definitions replacing the embedded ones")
	fs.String("metrics-addr", d.Metrics.Addr, "serve Prometheus metrics on this address")
	fs.Int("frames", d.Arena.Frames, "frames per match")
	fs.Uint64("seed", d.Arena.Seed, "seed of the first match; match i uses seed+i")
	fs.Int("team-size", d.Arena.TeamSize, "agents per team")
	fs.Int("respawn-frames", d.Arena.RespawnFrames, "frames a hit agent waits before respawning")
}

// Loader layers the configuration sources on one viper instance.
type Loader struct {
	viper *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())
	return &Loader{viper: v}
}

// setDefaults registers every key so that environment variables are seen
// by Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("blue", d.Blue)
	v.SetDefault("red", d.Red)
	v.SetDefault("matches", d.Matches)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("definitions", d.Definitions)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	a := d.Arena
	v.SetDefault("arena.width", a.Width)
	v.SetDefault("arena.height", a.Height)
	v.SetDefault("arena.team_size", a.TeamSize)
	v.SetDefault("arena.frames", a.Frames)
	v.SetDefault("arena.seed", a.Seed)
	v.SetDefault("arena.vision_radius", a.VisionRadius)
	v.SetDefault("arena.throw_range", a.ThrowRange)
	v.SetDefault("arena.speed", a.Speed)
	v.SetDefault("arena.ball_speed", a.BallSpeed)
	v.SetDefault("arena.respawn_frames", a.RespawnFrames)
	v.SetDefault("arena.dodge_frames", a.DodgeFrames)
	v.SetDefault("arena.power_ups", a.PowerUps)
}

// LoadFile reads a YAML configuration file. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	l.viper.SetConfigFile(path)
	l.viper.SetConfigType("yaml")
	if err := l.viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	return nil
}

// BindFlags makes the flags registered by RegisterFlags override every
// other source, but only when set on the command line.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.viper.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}
	return nil
}

// Load decodes and validates the layered configuration.
func (l *Loader) Load() (*Config, error) {
	var c Config
	if err := l.viper.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
