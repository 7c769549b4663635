package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	flags.String("url", "", "")
	flags.Int("limit", 2, "")
	flags.Bool("use-browser", false, "")
	flags.String("out", "", "")
	flags.Int("rpm", 0, "")
	flags.String("text", "", "")
	return flags
}

func TestLoadWithFlags_FlagsOverrideFileAndEnv(t *testing.T) {
	t.Setenv("COLD_EMAIL_LIMIT", "5")
	path := writeFile(t, "config.json", `{"limit": 3, "url": "https://file.example.com", "output_dir": "emails"}`)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--limit", "1", "--use-browser", "--rpm", "20"}))

	cfg, err := LoadWithFlags(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Limit)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, 20, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, "https://file.example.com", cfg.URL, "unset flag keeps the file value")
	assert.Equal(t, "emails", cfg.OutputDir)
}

func TestLoadWithFlags_UnsetFlagsKeepDefaults(t *testing.T) {
	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadWithFlags("", flags)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Limit)
	assert.Empty(t, cfg.OutputDir)
	assert.False(t, cfg.UseBrowser)
}

func TestFlagKeys_TargetKnownKeys(t *testing.T) {
	v := NewViper()
	for flag, key := range FlagKeys {
		assert.True(t, hasDefault(v.AllKeys(), key), "flag %s maps to unknown key %s", flag, key)
	}
}

func hasDefault(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
