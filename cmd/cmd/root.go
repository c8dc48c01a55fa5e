package cmd

import (
	"github.com/ostafen/memefs/internal/env"
	"github.com/spf13/cobra"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - a FAT-style filesystem in userspace",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineMkfsCommand())
	rootCmd.AddCommand(DefineInfoCommand())
	rootCmd.AddCommand(DefineCheckCommand())

	return rootCmd.Execute()
}
