// Package config loads process configuration from an optional file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DIALOGUEGATE"

	defaultPlayerDescription = "A former corporate worker who moved to Stardew Valley to escape city life " +
		"and run their grandfather's old farm. They're learning to be a farmer and getting to know the local community."
)

// Config is read by viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Log        LogConfig         `mapstructure:"log"`
	LLM        LLMConfig         `mapstructure:"llm"`
	Dialogue   DialogueConfig    `mapstructure:"dialogue"`
	Player     PlayerConfig      `mapstructure:"player"`
	Characters map[string]string `mapstructure:"characters"` // persona overrides by character name
	Cache      CacheConfig       `mapstructure:"cache"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`   // "dev" selects the console encoder
	Level string `mapstructure:"level"` // debug, info, warn, error
}

type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // "http" or "openai"
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"` // empty disables generation
	Model           string        `mapstructure:"model"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float32       `mapstructure:"temperature"`
}

type DialogueConfig struct {
	WaitBudget   time.Duration `mapstructure:"wait_budget"`
	Placeholder  string        `mapstructure:"placeholder"` // empty shows the fallback line
	TickInterval time.Duration `mapstructure:"tick_interval"`
	WorldName    string        `mapstructure:"world_name"`
}

type PlayerConfig struct {
	Description string `mapstructure:"description"`
}

type CacheConfig struct {
	RedisAddr   string        `mapstructure:"redis_addr"` // empty disables the journal
	RedisPrefix string        `mapstructure:"redis_prefix"`
	JournalTTL  time.Duration `mapstructure:"journal_ttl"` // 0 keeps lines forever
}

// Enabled reports whether a credential is configured.
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Load reads configPath if given, else an optional dialoguegate.{yaml,json,toml}
// in the working directory, then applies environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("dialoguegate")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names the gateway has always read, kept working without the prefix.
	for key, env := range map[string]string{
		"llm.api_key":      "LLM_API_KEY",
		"llm.base_url":     "LLM_BASE_URL",
		"server.port":      "PORT",
		"cache.redis_addr": "REDIS_ADDR",
		"log.env":          "ENV",
		"log.level":        "LOG_LEVEL",
	} {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.max_body_bytes", 64*1024)

	v.SetDefault("log.env", "")
	v.SetDefault("log.level", "")

	v.SetDefault("llm.provider", "http")
	v.SetDefault("llm.base_url", "https://api.openai.com")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.upstream_timeout", "20s")
	v.SetDefault("llm.max_tokens", 100)
	v.SetDefault("llm.temperature", 0.8)

	v.SetDefault("dialogue.wait_budget", "6s")
	v.SetDefault("dialogue.placeholder", "")
	v.SetDefault("dialogue.tick_interval", "100ms")
	v.SetDefault("dialogue.world_name", "Stardew Valley")

	v.SetDefault("player.description", defaultPlayerDescription)
	v.SetDefault("characters", map[string]string{})

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_prefix", "dialoguegate")
	v.SetDefault("cache.journal_ttl", "0s")
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port must not be empty"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	switch c.LLM.Provider {
	case "http", "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of http, openai", c.LLM.Provider))
	}
	if c.LLM.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("llm.upstream_timeout must be positive"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("llm.max_tokens must be positive"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.Enabled() && strings.TrimSpace(c.LLM.Model) == "" {
		errs = append(errs, errors.New("llm.model must be set when llm.api_key is"))
	}

	if c.Dialogue.WaitBudget <= 0 {
		errs = append(errs, errors.New("dialogue.wait_budget must be positive"))
	}
	if c.Dialogue.TickInterval <= 0 {
		errs = append(errs, errors.New("dialogue.tick_interval must be positive"))
	}

	if c.Cache.JournalTTL < 0 {
		errs = append(errs, errors.New("cache.journal_ttl must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
