// Package config loads CLI configuration from a file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. COLD_EMAIL_LIMIT.
const EnvPrefix = "COLD_EMAIL"

// Config holds every setting the commands read. Values come, lowest precedence
// first, from defaults, the config file, the environment, and finally CLI flags.
type Config struct {
	// Page source; at most one of these is set.
	URL  string `mapstructure:"url"`  // careers page URL
	File string `mapstructure:"file"` // local page text file

	Profile     string `mapstructure:"profile"`      // user profile JSON path
	Catalog     string `mapstructure:"catalog"`      // portfolio CSV path
	VectorStore string `mapstructure:"vector_store"` // sqlite-vec database path, empty disables semantic search
	Collection  string `mapstructure:"collection"`

	Instruction string `mapstructure:"instruction"`
	Limit       int    `mapstructure:"limit"` // portfolio links per job

	MaxInputChars int `mapstructure:"max_input_chars"`
	Concurrency   int `mapstructure:"concurrency"`

	OutputDir  string `mapstructure:"output_dir"` // empty writes no files
	UseBrowser bool   `mapstructure:"use_browser"`
	Verbose    bool   `mapstructure:"verbose"`
	JSONLogs   bool   `mapstructure:"json_logs"`

	APIKey      string `mapstructure:"api_key"`
	DatabaseURL string `mapstructure:"database_url"`

	LLM LLMConfig `mapstructure:"llm"`
}

// LLMConfig overrides model selection. Empty model names keep the client defaults.
type LLMConfig struct {
	ExtractionModel   string  `mapstructure:"extraction_model"`
	CompositionModel  string  `mapstructure:"composition_model"`
	EmbeddingModel    string  `mapstructure:"embedding_model"`
	Temperature       float64 `mapstructure:"temperature"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "")
	v.SetDefault("file", "")
	v.SetDefault("profile", "")
	v.SetDefault("catalog", "")
	v.SetDefault("vector_store", ".vectors.db")
	v.SetDefault("collection", "portfolio")
	v.SetDefault("instruction", "")
	v.SetDefault("limit", 2)
	v.SetDefault("max_input_chars", 120_000)
	v.SetDefault("concurrency", 1)
	v.SetDefault("output_dir", "")
	v.SetDefault("use_browser", false)
	v.SetDefault("verbose", false)
	v.SetDefault("json_logs", false)
	v.SetDefault("api_key", "")
	v.SetDefault("database_url", "")
	v.SetDefault("llm.extraction_model", "")
	v.SetDefault("llm.composition_model", "")
	v.SetDefault("llm.embedding_model", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.requests_per_minute", 0)
}

// BindSensitiveEnvVars maps the conventional unprefixed variables onto their keys.
// The prefixed form still takes precedence.
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
}

// NewViper returns a viper instance with defaults and environment binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)
	return v
}

// Load reads configuration from path (JSON, YAML or TOML, chosen by extension)
// layered over defaults and environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithViper unmarshals an already prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has usable values.
// Required inputs are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.URL != "" && c.File != "" {
		return fmt.Errorf("config error: 'url' and 'file' are mutually exclusive")
	}

	if c.Limit < 0 {
		return fmt.Errorf("config error: 'limit' must be non-negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("config error: 'concurrency' must be at least 1")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'llm.requests_per_minute' must be non-negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}

	for name, path := range map[string]string{"file": c.File, "profile": c.Profile, "catalog": c.Catalog} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s not found: %s", name, path)
		}
	}

	return nil
}
