package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tminor/tags-lsp/tags"
)

// EnvPrefix prefixes environment variables, e.g. TAGS_LSP_LOW_PRECISION.
const EnvPrefix = "TAGS_LSP"

// Config is the runtime configuration. It does not change after startup.
type Config struct {
	// LowPrecision resolves hits to the start of their line without reading the file.
	LowPrecision bool `mapstructure:"low-precision" yaml:"low-precision"`

	Transport string `mapstructure:"transport" yaml:"transport" validate:"oneof=stdio tcp"`
	Address   string `mapstructure:"address" yaml:"address,omitempty" validate:"required_if=Transport tcp"`

	// Log is a file path. Empty means stderr.
	Log       string `mapstructure:"log" yaml:"log,omitempty"`
	Verbosity int    `mapstructure:"verbosity" yaml:"verbosity" validate:"min=-4,max=5"`

	Global string `mapstructure:"global" yaml:"global" validate:"required"`
	Gtags  string `mapstructure:"gtags" yaml:"gtags" validate:"required"`

	MaxOutput    int64         `mapstructure:"max-output" yaml:"max-output" validate:"gt=0"`
	QueryTimeout time.Duration `mapstructure:"query-timeout" yaml:"query-timeout" validate:"min=0"`

	// Watch re-indexes a folder when files under it change on disk.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Transport: "stdio",
		Global:    "global",
		Gtags:     "gtags",
		MaxOutput: tags.DefaultMaxOutput,
	}
}

// SetDefaults registers Default with v so that unset keys fall back to it.
func SetDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("low-precision", defaults.LowPrecision)
	v.SetDefault("transport", defaults.Transport)
	v.SetDefault("address", defaults.Address)
	v.SetDefault("log", defaults.Log)
	v.SetDefault("verbosity", defaults.Verbosity)
	v.SetDefault("global", defaults.Global)
	v.SetDefault("gtags", defaults.Gtags)
	v.SetDefault("max-output", defaults.MaxOutput)
	v.SetDefault("query-timeout", defaults.QueryTimeout)
	v.SetDefault("watch", defaults.Watch)
}

// Load reads the optional config file at path plus TAGS_LSP_* environment
// variables into v, then decodes and validates the result.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (self Config) Validate() error {
	if err := validate.Struct(self); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// YAML renders the configuration as a YAML document.
func (self Config) YAML() ([]byte, error) {
	return yaml.Marshal(self)
}
