package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openmission/openmission/pkg/report"
)

func newReportsCommand() *cobra.Command {
	var (
		level  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "reports <run-id>",
		Short: "Show the report trail of a run",
		Long: `Print the operator report entries a run emitted, in order: which
behavior reported, at what level, the message and any measured value.`,
		Example: `  # Show a run's report trail
  missionctl reports 2f1b9c1e-...

  # Errors only
  missionctl reports 2f1b9c1e-... --level error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runID := args[0]

			env, err := newEnvironment(ctx, true)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			if env.store == nil {
				return fmt.Errorf("run persistence is disabled; configure store_path or pass --store")
			}

			// The run must exist; an empty trail on a live run is fine.
			if _, err := env.store.GetRun(ctx, runID); err != nil {
				return err
			}

			var levelFilter *report.Level
			if level != "" {
				l := report.Level(level)
				levelFilter = &l
			}

			reports, err := env.store.ListReports(ctx, &runID, levelFilter, limit, offset)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no report entries")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tBEHAVIOR\tLEVEL\tMESSAGE")
			for _, rep := range reports {
				msg := rep.Message
				if rep.Value != nil {
					unit := ""
					if rep.Unit != nil {
						unit = " " + *rep.Unit
					}
					msg = fmt.Sprintf("%s (%g%s)", msg, *rep.Value, unit)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					rep.Time.Format("15:04:05.000"), rep.Behavior, rep.Level, msg)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "filter by level (debug, info, warning, error)")
	cmd.Flags().IntVar(&limit, "limit", 200, "maximum entries to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")

	return cmd
}
