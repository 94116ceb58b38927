package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	defaultNodeCounts = []int{5, 10, 20, 30, 40, 50}
	defaultRuns       = 10
)

//NewSweepCmd returns the command that repeats runs over node counts and seeds
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Repeat runs over node counts and seeds",
		PreRunE: loadConfig,
		RunE:    runSweep,
	}
	AddSweepFlags(cmd)
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	counts, err := cmd.Flags().GetIntSlice("node-counts")
	if err != nil {
		return err
	}
	runs, err := cmd.Flags().GetInt("runs")
	if err != nil {
		return err
	}
	parallelism, err := cmd.Flags().GetInt("parallelism")
	if err != nil {
		return err
	}

	nodeCounts := make([]uint32, 0, len(counts))
	for _, c := range counts {
		if c <= 0 {
			return fmt.Errorf("node count must be positive: %d", c)
		}
		nodeCounts = append(nodeCounts, uint32(c))
	}

	base, err := simConfig()
	if err != nil {
		return err
	}

	out, err := newOutputs(_config.Regka.Store)
	if err != nil {
		return err
	}
	defer out.close()

	base.Metrics = out.metrics

	out.logger.WithFields(logrus.Fields{
		"node_counts": nodeCounts,
		"runs":        runs,
		"parallelism": parallelism,
	}).Info("Starting sweep")

	done := 0
	total := len(nodeCounts) * runs

	return out.execute(func(ctx context.Context) error {
		err := sim.Sweep(ctx, sim.SweepConfig{
			Base:        *base,
			NodeCounts:  nodeCounts,
			Runs:        runs,
			Parallelism: parallelism,
		}, func(r *sim.Result) error {
			done++
			out.logger.WithFields(logrus.Fields{
				"run_id":          r.RunID,
				"nodes":           r.NumNodes,
				"completion_time": r.CompletionTime,
				"progress":        fmt.Sprintf("%d/%d", done, total),
			}).Info("Run finished")
			return out.save(r)
		})
		if err == context.Canceled {
			return nil
		}
		return err
	})
}

//AddSweepFlags adds flags to the Sweep command
func AddSweepFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)
	AddSimFlags(cmd)

	cmd.Flags().IntSlice("node-counts", defaultNodeCounts, "Node counts to sweep")
	cmd.Flags().Int("runs", defaultRuns, "Runs per node count, seeded seed..seed+runs-1")
	cmd.Flags().Int("parallelism", runtime.NumCPU(), "Number of concurrent runs")
}
