package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagKeys maps CLI flag names to config keys. Flags not listed are command-local.
var FlagKeys = map[string]string{
	"url":              "url",
	"file":             "file",
	"profile":          "profile",
	"catalog":          "catalog",
	"vector-store":     "vector_store",
	"collection":       "collection",
	"instruction":      "instruction",
	"limit":            "limit",
	"max-input-chars":  "max_input_chars",
	"concurrency":      "concurrency",
	"out":              "output_dir",
	"use-browser":      "use_browser",
	"verbose":          "verbose",
	"json-logs":        "json_logs",
	"database-url":     "database_url",
	"rpm":              "llm.requests_per_minute",
	"extraction-model": "llm.extraction_model",
	"model":            "llm.composition_model",
	"temperature":      "llm.temperature",
}

// BindFlags binds every known flag in flags to its config key, so that a flag set
// on the command line overrides the file and the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := FlagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// LoadWithFlags is Load with command-line overrides applied on top.
func LoadWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return LoadWithViper(v)
}
