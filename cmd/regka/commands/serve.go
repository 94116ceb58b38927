package commands

import (
	"context"
	"fmt"

	"github.com/mosaicnetworks/regka/src/config"
	"github.com/spf13/cobra"
)

//NewServeCmd returns the command that serves stored results over HTTP
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve stored results over HTTP",
		PreRunE: loadConfig,
		RunE:    runServe,
	}
	AddServeFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if _config.Regka.ServiceAddr == "" {
		return fmt.Errorf("--service-listen is required")
	}

	out, err := newOutputs(true)
	if err != nil {
		return err
	}
	defer out.close()

	// wait for a signal
	return out.execute(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
}

//AddServeFlags adds flags to the Serve command
func AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Regka.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Regka.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("db", _config.Regka.DatabaseDir, "Dabatabase directory")
	cmd.Flags().StringP("service-listen", "s", config.DefaultServiceAddr, "Listen IP:Port for HTTP service")
}
