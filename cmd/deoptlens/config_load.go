package main

import (
	"github.com/spf13/cobra"

	"deoptlens/internal/config"
)

// loadConfig reads --config, or discovers deoptlens.toml from the working
// directory. Defaults are returned when there is none.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}
