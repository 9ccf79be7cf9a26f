// Package config loads and validates the interview coach configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/interview-coach/internal/llm"
)

// DefaultConfigName is looked up in the working directory when no explicit
// config file is given.
const DefaultConfigName = "interview-coach"

// EnvPrefix prefixes environment overrides, e.g. INTERVIEW_SERVER_PORT.
const EnvPrefix = "INTERVIEW"

// Store drivers accepted by store.driver.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Store     StoreConfig     `mapstructure:"store"`
	Throttle  ThrottleConfig  `mapstructure:"throttle"`
	Converter ConverterConfig `mapstructure:"converter"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider      string         `mapstructure:"provider"`
	Gemini        ProviderConfig `mapstructure:"gemini"`
	OpenAI        ProviderConfig `mapstructure:"openai"`
	MaxToolRounds int            `mapstructure:"max_tool_rounds"`
}

// ProviderConfig holds one backend's credentials and model overrides.
type ProviderConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APIKeyFile string `mapstructure:"api_key_file"`
	BaseURL    string `mapstructure:"base_url"`
	// Model drives the interview conversation.
	Model string `mapstructure:"model"`
	// ReportModel synthesizes end-of-session reports.
	ReportModel string `mapstructure:"report_model"`
}

// StoreConfig selects where session documents live.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
}

// ThrottleConfig configures the process-wide model admission gate.
type ThrottleConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// ConverterConfig locates the document-conversion tool server.
type ConverterConfig struct {
	Endpoint string   `mapstructure:"endpoint"`
	Command  string   `mapstructure:"command"`
	Args     []string `mapstructure:"args"`
	ToolName string   `mapstructure:"tool_name"`
}

// FetchConfig configures document downloads.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	UseBrowser   bool          `mapstructure:"use_browser"`
}

// RateLimitConfig configures the per-client HTTP limiter.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	DefaultWindow time.Duration `mapstructure:"default_window"`
	Whitelist     string        `mapstructure:"whitelist"`
	Blacklist     string        `mapstructure:"blacklist"`
}

// PDFConfig configures report rendering.
type PDFConfig struct {
	// FontPath is a TrueType font used for text outside Windows-1252.
	FontPath string `mapstructure:"font_path"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key with its default so environment
// overrides apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.write_timeout", time.Duration(0))

	v.SetDefault("llm.provider", "gemini")
	for _, p := range []string{"gemini", "openai"} {
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".api_key_file", "")
		v.SetDefault("llm."+p+".base_url", "")
		v.SetDefault("llm."+p+".model", "")
		v.SetDefault("llm."+p+".report_model", "")
	}
	v.SetDefault("llm.max_tool_rounds", 4)

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "interview-coach.db")

	v.SetDefault("throttle.min_interval", 60*time.Second)

	v.SetDefault("converter.endpoint", "")
	v.SetDefault("converter.command", "")
	v.SetDefault("converter.args", []string{})
	v.SetDefault("converter.tool_name", "convert_to_markdown")

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.use_browser", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 300)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.whitelist", "")
	v.SetDefault("rate_limit.blacklist", "")

	v.SetDefault("pdf.font_path", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// BindEnv wires INTERVIEW_* overrides plus the conventional variable names
// other tools use for the same settings.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	wellKnown := map[string]string{
		"llm.gemini.api_key":  "GEMINI_API_KEY",
		"llm.openai.api_key":  "OPENAI_API_KEY",
		"llm.openai.base_url": "OPENAI_BASE_URL",
		"store.database_url":  "DATABASE_URL",
	}
	for key, env := range wellKnown {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

// Load reads configuration from path (or ./interview-coach.yaml when path is
// empty and the file exists), the environment, and values already set on v,
// such as bound flags. The result is validated.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveSecrets() error {
	for name, p := range map[string]*ProviderConfig{"gemini": &c.LLM.Gemini, "openai": &c.LLM.OpenAI} {
		key, err := loadSecret(name+" API key", p.APIKey, p.APIKeyFile)
		if err != nil {
			return err
		}
		p.APIKey = key
	}
	return nil
}

// Backend returns the provider in use. Unknown names select the default backend.
func (c *LLMConfig) Backend() llm.Provider {
	return llm.ParseProvider(c.Provider)
}

// Selected returns the settings of the provider in use.
func (c *LLMConfig) Selected() ProviderConfig {
	switch c.Backend() {
	case llm.ProviderOpenAI:
		return c.OpenAI
	case llm.ProviderGemini:
		return c.Gemini
	}
	return c.Gemini
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("config error: 'server.write_timeout' must be non-negative")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' is required for the postgres store")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config error: 'store.sqlite_path' is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.Store.Driver)
	}

	if c.Throttle.MinInterval < 0 {
		return fmt.Errorf("config error: 'throttle.min_interval' must be non-negative")
	}
	if c.LLM.MaxToolRounds < 0 {
		return fmt.Errorf("config error: 'llm.max_tool_rounds' must be non-negative")
	}
	if c.Fetch.MaxRedirects < 0 {
		return fmt.Errorf("config error: 'fetch.max_redirects' must be non-negative")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("config error: 'fetch.timeout' must be non-negative")
	}
	if c.RateLimit.DefaultLimit < 0 || c.RateLimit.DefaultWindow < 0 {
		return fmt.Errorf("config error: 'rate_limit' values must be non-negative")
	}

	if c.LLM.Selected().APIKey == "" {
		return fmt.Errorf("config error: an API key is required for the %s provider", c.LLM.Backend())
	}
	return nil
}
