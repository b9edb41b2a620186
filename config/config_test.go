package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags-lsp.yaml")
	content := "low-precision: true\nglobal: /opt/global/bin/global\nquery-timeout: 3s\nwatch: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.True(t, config.LowPrecision)
	assert.True(t, config.Watch)
	assert.Equal(t, "/opt/global/bin/global", config.Global)
	assert.Equal(t, "gtags", config.Gtags)
	assert.Equal(t, 3*time.Second, config.QueryTimeout)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("TAGS_LSP_LOW_PRECISION", "true")
	t.Setenv("TAGS_LSP_GTAGS", "/usr/local/bin/gtags")

	config, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.True(t, config.LowPrecision)
	assert.Equal(t, "/usr/local/bin/gtags", config.Gtags)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"tcp with address", func(c *Config) { c.Transport = "tcp"; c.Address = ":7000" }, true},
		{"tcp without address", func(c *Config) { c.Transport = "tcp" }, false},
		{"unknown transport", func(c *Config) { c.Transport = "pigeon" }, false},
		{"empty global", func(c *Config) { c.Global = "" }, false},
		{"zero max output", func(c *Config) { c.MaxOutput = 0 }, false},
		{"negative timeout", func(c *Config) { c.QueryTimeout = -time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(&config)
			err := config.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestYAML(t *testing.T) {
	config := Default()
	config.LowPrecision = true

	data, err := config.YAML()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["low-precision"])
	assert.Equal(t, "stdio", decoded["transport"])
	assert.NotContains(t, decoded, "address")
}
