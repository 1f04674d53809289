// Package config loads the go-gaucho configuration. Values come from, in
// increasing precedence: built-in defaults, an optional YAML file and
// GAUCHO_* environment variables. The merged result is validated before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-gaucho/internal/consensus"
	"github.com/ahrav/go-gaucho/internal/judge"
	"github.com/ahrav/go-gaucho/internal/render"
	"github.com/ahrav/go-gaucho/internal/store"
	"github.com/ahrav/go-gaucho/internal/worker"
)

// ErrInvalidConfig wraps every load or validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	Judge     judge.Config     `yaml:"judge"`
	Render    render.Config    `yaml:"render"`
	Consensus consensus.Config `yaml:"consensus"`
	Store     store.Config     `yaml:"store"`
	Temporal  worker.Config    `yaml:"temporal"`
	MCP       MCPConfig        `yaml:"mcp"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// MCPConfig selects how the MCP server is exposed.
type MCPConfig struct {
	Transport string `yaml:"transport" validate:"oneof=stdio http"`
	Addr      string `yaml:"addr"      validate:"required_if=Transport http"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info", Format: "json"},
		Judge:     judge.DefaultConfig(),
		Render:    render.DefaultConfig(),
		Consensus: consensus.DefaultConfig(),
		Store:     store.DefaultConfig(),
		Temporal:  worker.DefaultConfig(),
		MCP:       MCPConfig{Transport: "stdio", Addr: ":8080"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode unmarshals YAML over cfg, rejecting unknown keys.
func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// envOverride binds one environment variable to a setter.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string) error
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

var overrides = []envOverride{
	{"GAUCHO_LOG_LEVEL", setString(func(c *Config) *string { return &c.Log.Level })},
	{"GAUCHO_LOG_FORMAT", setString(func(c *Config) *string { return &c.Log.Format })},
	{"GAUCHO_JUDGE_PROVIDER", setString(func(c *Config) *string { return &c.Judge.Provider })},
	{"GAUCHO_JUDGE_MODEL", setString(func(c *Config) *string { return &c.Judge.Model })},
	{"GAUCHO_JUDGE_ENDPOINT", setString(func(c *Config) *string { return &c.Judge.Endpoint })},
	{"GAUCHO_JUDGE_API_KEY_ENV", setString(func(c *Config) *string { return &c.Judge.APIKeyEnv })},
	{"GAUCHO_RENDER_DRIVER", setString(func(c *Config) *string { return &c.Render.Driver })},
	{"GAUCHO_RENDER_DEBUGGER_URL", setString(func(c *Config) *string { return &c.Render.DebuggerURL })},
	{"GAUCHO_CONSENSUS_VALIDATORS", setInt(func(c *Config) *int { return &c.Consensus.Validators })},
	{"GAUCHO_CONSENSUS_MAX_ROUNDS", setInt(func(c *Config) *int { return &c.Consensus.MaxRounds })},
	{"GAUCHO_STORE_DRIVER", setString(func(c *Config) *string { return &c.Store.Driver })},
	{"GAUCHO_STORE_DSN", setString(func(c *Config) *string { return &c.Store.DSN })},
	{"GAUCHO_REDIS_ADDR", setString(func(c *Config) *string { return &c.Store.Redis.Addr })},
	{"GAUCHO_REDIS_DB", setInt(func(c *Config) *int { return &c.Store.Redis.DB })},
	{"GAUCHO_TEMPORAL_HOST_PORT", setString(func(c *Config) *string { return &c.Temporal.HostPort })},
	{"GAUCHO_TEMPORAL_NAMESPACE", setString(func(c *Config) *string { return &c.Temporal.Namespace })},
	{"GAUCHO_TEMPORAL_TASK_QUEUE", setString(func(c *Config) *string { return &c.Temporal.TaskQueue })},
	{"GAUCHO_MCP_TRANSPORT", setString(func(c *Config) *string { return &c.MCP.Transport })},
	{"GAUCHO_MCP_ADDR", setString(func(c *Config) *string { return &c.MCP.Addr })},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, o := range overrides {
		v, ok := lookup(o.name)
		if !ok {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, o.name, v, err)
		}
	}
	return nil
}
