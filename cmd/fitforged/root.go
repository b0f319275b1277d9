package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fitforge/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "fitforged",
		Short:         "Fitforge guidance worker",
		Long:          "fitforged processes virtual try-on sessions: it fits a body model to an avatar photo and publishes the guidance assets the garment generator consumes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newProcessCommand(&configFlag))
	rootCmd.AddCommand(newStatusCommand(&configFlag))
	rootCmd.AddCommand(newCheckCommand(&configFlag))

	return rootCmd
}

// loadConfig resolves configuration for a command run. A .env next to the
// process is honored before environment overrides are read.
func loadConfig(configFlag *string) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, _, err := config.Load(*configFlag)
	return cfg, err
}
