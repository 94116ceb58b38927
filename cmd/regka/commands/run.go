package commands

import (
	"context"

	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that executes a single run
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run one key agreement",
		PreRunE: loadConfig,
		RunE:    runRegka,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runRegka(cmd *cobra.Command, args []string) error {
	conf, err := simConfig()
	if err != nil {
		return err
	}

	out, err := newOutputs(_config.Regka.Store)
	if err != nil {
		return err
	}
	defer out.close()

	conf.Metrics = out.metrics

	s, err := sim.New(conf)
	if err != nil {
		out.logger.Error("Cannot initialize simulation:", err)
		return err
	}
	if out.service != nil {
		out.service.SetSimulation(s)
	}

	return out.execute(func(ctx context.Context) error {
		result, err := s.Run(ctx)
		if result != nil {
			if serr := out.save(result); serr != nil {
				out.logger.WithError(serr).Error("Saving result")
				return serr
			}
		}
		if err == context.Canceled {
			return nil
		}
		return err
	})
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)
	AddSimFlags(cmd)
}
