package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRunsCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded mission runs",
		Long: `List the run history from the store, most recent first: run ID, mission,
behavior type, status and terminal outcome.`,
		Example: `  # List the last 20 runs
  missionctl runs

  # Page through older runs
  missionctl runs --limit 50 --offset 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := newEnvironment(ctx, true)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			if env.store == nil {
				return fmt.Errorf("run persistence is disabled; configure store_path or pass --store")
			}

			runs, err := env.store.ListRuns(ctx, limit, offset)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no recorded runs")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tMISSION\tBEHAVIOR\tSTATUS\tOUTCOME\tSTARTED")
			for _, run := range runs {
				outcome := "-"
				if run.Outcome != nil {
					outcome = *run.Outcome
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					run.ID, run.Mission, run.Behavior, run.Status, outcome,
					run.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "runs to skip")

	return cmd
}
