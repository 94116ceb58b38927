package main

import (
	"os"

	cmd "github.com/mosaicnetworks/regka/cmd/regka/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.NewRunCmd(),
		cmd.NewSweepCmd(),
		cmd.NewResultsCmd(),
		cmd.NewServeCmd(),
		cmd.VersionCmd,
	)

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
