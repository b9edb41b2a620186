package main

import (
	"github.com/spf13/cobra"

	"github.com/tminor/tags-lsp/implementation"
)

const implementationName = implementation.ServerName

func init() {
	command.AddCommand(configCommand)
}

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config_, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config_.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
