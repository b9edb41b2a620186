package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
	"github.com/tliron/kutil/util"

	"github.com/tminor/tags-lsp/config"
	"github.com/tminor/tags-lsp/implementation"
	"github.com/tminor/tags-lsp/tags"
)

var configPath string

var settings = viper.New()

func init() {
	flags := command.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (YAML, TOML or JSON)")
	flags.Bool("low-precision", false, "resolve results to line starts without reading source files")
	flags.String("transport", "stdio", "transport (\"stdio\" or \"tcp\")")
	flags.String("address", "", "listen address for the tcp transport")
	flags.String("log", "", "log to a file (defaults to stderr)")
	flags.CountP("verbose", "v", "add a log verbosity level (can be used multiple times)")
	flags.String("global", "global", "query program")
	flags.String("gtags", "gtags", "index build program")
	flags.Int64("max-output", tags.DefaultMaxOutput, "maximum bytes of query output")
	flags.Duration("query-timeout", 0, "maximum duration of a single query (0 for none)")
	flags.Bool("watch", false, "re-index workspace folders when files change on disk")

	for _, name := range []string{"low-precision", "transport", "address", "log", "global", "gtags", "max-output", "query-timeout", "watch"} {
		settings.BindPFlag(name, flags.Lookup(name))
	}
	settings.BindPFlag("verbosity", flags.Lookup("verbose"))
}

var command = &cobra.Command{
	Use:          "tags-lsp",
	Short:        "Language server backed by GNU Global",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config_, err := loadConfig()
		if err != nil {
			return err
		}
		return Serve(config_)
	},
}

func loadConfig() (config.Config, error) {
	return config.Load(settings, configPath)
}

// Serve runs the language server until the client disconnects.
func Serve(config_ config.Config) error {
	if config_.Log != "" {
		util.ConfigureLogging(config_.Verbosity, &config_.Log)
	} else {
		util.ConfigureLogging(config_.Verbosity, nil)
	}

	options := implementation.NewOptions(config_, version)
	options.Exit = atexit.Exit
	debug := config_.Verbosity >= 2

	switch config_.Transport {
	case "tcp":
		return implementation.RunTCP(config_.Address, options, debug)
	default:
		server := implementation.NewServer(options)
		atexit.Register(server.Close)
		return server.RunStdio(debug)
	}
}
