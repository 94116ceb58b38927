package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/mosaicnetworks/regka/src/store"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"
)

//NewResultsCmd returns the command that prints stored results
func NewResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "results [run-id]",
		Short:   "Print stored results",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: loadConfig,
		RunE:    printResults,
	}
	AddResultsFlags(cmd)
	return cmd
}

func printResults(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	st, err := store.NewBadgerStore(_config.Regka.DatabaseDir, _config.Regka.Logger())
	if err != nil {
		return err
	}
	defer st.Close()

	var results []*sim.Result
	if len(args) == 1 {
		r, err := st.Get(args[0])
		if err != nil {
			return err
		}
		results = append(results, r)
	} else {
		results, err = st.List()
		if err != nil {
			return err
		}
	}

	return writeResults(cmd.OutOrStdout(), format, results)
}

func writeResults(w io.Writer, format string, results []*sim.Result) error {
	switch format {
	case "csv":
		return store.WriteCSV(w, results)
	case "json":
		jh := new(codec.JsonHandle)
		jh.Indent = 2
		return codec.NewEncoder(w, jh).Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN ID\tNODES\tLINK\tCOMPLETION (s)\tSENT\tRECEIVED\tOVERHEAD\tSUCCESS (%)")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%.4f\t%d\t%d\t%.2f\t%.2f\n",
				r.RunID,
				r.NumNodes,
				r.LinkQuality,
				r.CompletionTime,
				r.TotalSent,
				r.TotalReceived,
				r.OverheadRatio,
				r.SuccessRate,
			)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (table, csv, json)", format)
	}
}

//AddResultsFlags adds flags to the Results command
func AddResultsFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Regka.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", "warn", "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("db", _config.Regka.DatabaseDir, "Dabatabase directory")
	cmd.Flags().StringP("format", "f", "table", "table, csv, json")
}
